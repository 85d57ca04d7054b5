package search

// stopwords is the fixed English stop-word list removed during tokenization.
// Changing it changes every fitted vocabulary, so treat it as part of the
// index format.
var stopwords = map[string]bool{
	"a": true, "about": true, "above": true, "across": true, "after": true, "again": true,
	"against": true, "all": true, "almost": true, "alone": true, "along": true, "already": true,
	"also": true, "although": true, "always": true, "am": true, "among": true, "an": true,
	"and": true, "another": true, "any": true, "are": true, "around": true, "as": true,
	"at": true, "be": true, "became": true, "because": true, "become": true, "becomes": true,
	"been": true, "before": true, "being": true, "below": true, "between": true, "both": true,
	"but": true, "by": true, "can": true, "cannot": true, "could": true, "did": true,
	"do": true, "does": true, "doing": true, "down": true, "during": true, "each": true,
	"either": true, "else": true, "enough": true, "even": true, "ever": true, "every": true,
	"few": true, "for": true, "from": true, "further": true, "had": true, "has": true,
	"have": true, "having": true, "he": true, "her": true, "here": true, "hers": true,
	"herself": true, "him": true, "himself": true, "his": true, "how": true, "however": true,
	"i": true, "if": true, "in": true, "into": true, "is": true, "it": true,
	"its": true, "itself": true, "just": true, "may": true, "me": true, "might": true,
	"more": true, "most": true, "much": true, "must": true, "my": true, "myself": true,
	"neither": true, "never": true, "no": true, "nor": true, "not": true, "now": true,
	"of": true, "off": true, "often": true, "on": true, "once": true, "only": true,
	"or": true, "other": true, "others": true, "our": true, "ours": true, "ourselves": true,
	"out": true, "over": true, "own": true, "per": true, "perhaps": true, "rather": true,
	"same": true, "she": true, "should": true, "since": true, "so": true, "some": true,
	"still": true, "such": true, "than": true, "that": true, "the": true, "their": true,
	"theirs": true, "them": true, "themselves": true, "then": true, "there": true, "these": true,
	"they": true, "this": true, "those": true, "though": true, "through": true, "thus": true,
	"to": true, "together": true, "too": true, "toward": true, "towards": true, "under": true,
	"until": true, "up": true, "upon": true, "us": true, "very": true, "via": true,
	"was": true, "we": true, "were": true, "what": true, "whatever": true, "when": true,
	"where": true, "whether": true, "which": true, "while": true, "who": true, "whoever": true,
	"whole": true, "whom": true, "whose": true, "why": true, "will": true, "with": true,
	"within": true, "without": true, "would": true, "yet": true, "you": true, "your": true,
	"yours": true, "yourself": true, "yourselves": true,
}

// IsStopword reports whether a lowercase token is dropped by the tokenizer.
func IsStopword(token string) bool {
	return stopwords[token]
}
