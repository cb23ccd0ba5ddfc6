package lexicon

// Word lists are English-only.

var stopwords = toSet(
	"a", "about", "above", "after", "again", "against", "all", "am", "an", "and", "any", "are",
	"as", "at", "be", "because", "been", "before", "being", "below", "between", "both", "but",
	"by", "can", "could", "did", "do", "does", "doing", "down", "during", "each", "few", "for",
	"from", "further", "had", "has", "have", "having", "he", "her", "here", "hers", "herself",
	"him", "himself", "his", "how", "i", "if", "in", "into", "is", "it", "its", "itself",
	"just", "me", "more", "most", "my", "myself", "no", "nor", "not", "now", "of", "off", "on",
	"once", "only", "or", "other", "our", "ours", "ourselves", "out", "over", "own", "same",
	"she", "should", "so", "some", "such", "than", "that", "the", "their", "theirs", "them",
	"themselves", "then", "there", "these", "they", "this", "those", "through", "to", "too",
	"under", "until", "up", "very", "was", "we", "were", "what", "when", "where", "which",
	"while", "who", "whom", "why", "will", "with", "would", "you", "your", "yours", "yourself",
	"yourselves", "also", "get", "got", "going", "gonna", "really", "thing", "things", "lot",
	"it's", "i'm", "don't", "that's", "there's", "we're", "you're", "they're", "can't",
	"didn't", "doesn't", "isn't", "wasn't", "i've", "i'll", "i'd", "let's", "what's",
	"make", "made", "one", "way", "much", "many", "even", "still", "well", "back", "like",
	"want", "know", "think", "say", "said", "see", "go", "come", "take",
)

var fillers = toSet(
	"um", "uh", "umm", "uhh", "er", "ah", "hmm", "mm", "like", "basically", "literally",
	"actually", "yeah", "okay", "ok", "right", "kinda", "sorta",
)

var emphasis = toSet(
	"amazing", "incredible", "absolutely", "totally", "completely", "love", "loved", "huge",
	"massive", "insane", "crazy", "awesome", "fantastic", "wow", "best", "favorite",
	"passionate", "excited", "exciting", "obsessed", "critical", "essential", "powerful",
	"remarkable", "brilliant", "extraordinary", "game-changer", "blown", "unbelievable",
	"definitely", "seriously", "truly", "super", "never", "always", "must",
)

var contractionsWithS = toSet(
	"it's", "that's", "there's", "here's", "what's", "let's", "he's", "she's", "who's",
	"where's", "how's",
)

var slang = toSet(
	"gonna", "wanna", "gotta", "kinda", "sorta", "yeah", "yep", "nope", "dude", "guys",
	"stuff", "cool", "awesome", "super", "totally", "lol", "omg", "ya", "y'all", "ain't",
	"crazy", "insane", "legit", "vibe", "vibes", "hack", "nah", "ok", "okay",
)

var personalPronouns = toSet(
	"i", "me", "my", "mine", "myself", "we", "us", "our", "ours", "ourselves",
	"you", "your", "yours", "yourself", "yourselves", "i'm", "i've", "i'll", "i'd",
	"we're", "we've", "you're", "you've",
)

// Conjunctions that make a fragment depend on what came before it.
var dependentOpeners = toSet(
	"and", "but", "so", "because", "or", "then", "which", "it", "this", "that", "they", "he", "she",
)

// IsDependentOpener reports whether a fragment starting with w leans on prior context.
func IsDependentOpener(w string) bool {
	return dependentOpeners[w]
}

// AnalogyMarkers signal a comparison or metaphor.
var AnalogyMarkers = []string{
	"as if", "as though", "reminds me of", "it's like", "is like", "just like", "similar to",
	"think of it as", "think of it like", "kind of like", "the same way", "like a", "like an",
	"imagine",
}

// ChronologyMarkers signal a time-ordered narrative.
var ChronologyMarkers = []string{
	"first", "then", "after that", "next", "finally", "later", "eventually", "afterwards",
	"by the time", "years ago", "at the time", "meanwhile", "before that", "the next day",
}

// AnecdoteMarkers signal a personal story.
var AnecdoteMarkers = []string{
	"i remember", "one time", "once", "last week", "last year", "yesterday", "a few years ago",
	"years ago", "when i was", "the other day", "story", "back when", "i was",
}

// HookCues signal an attention-grabbing opener.
var HookCues = []string{
	"here's the thing", "imagine", "what if", "the truth is", "nobody tells you", "stop",
	"everyone thinks", "most people", "secret", "surprising", "you won't believe",
}

// CTACues signal a call to action.
var CTACues = []string{
	"try", "start", "go", "sign up", "subscribe", "let me know", "reach out", "share",
	"comment", "join", "download", "check out", "follow", "click", "give it a",
}

// SummaryCues signal a recap.
var SummaryCues = []string{
	"in short", "in summary", "to sum up", "bottom line", "the takeaway", "all in all",
	"in the end", "ultimately", "to recap", "that's why", "so remember",
}

// CertaintyWords raise authority.
var CertaintyWords = []string{
	"clearly", "certainly", "definitely", "proven", "research", "data", "evidence", "always",
	"never", "must", "will", "fact", "know", "guarantee", "results", "experience", "expert",
}

// HedgeWords lower authority and directness.
var HedgeWords = []string{
	"maybe", "perhaps", "might", "possibly", "i think", "i guess", "sort of", "kind of",
	"probably", "somewhat", "i feel like", "not sure", "could be", "i suppose",
}

// WarmthWords raise warmth.
var WarmthWords = []string{
	"love", "appreciate", "thank", "thanks", "grateful", "together", "friend", "friends",
	"glad", "happy", "care", "welcome", "wonderful", "kind", "heart", "family", "community",
	"we", "us", "our", "share", "enjoy",
}

// HumorWords raise humor.
var HumorWords = []string{
	"haha", "lol", "funny", "joke", "joking", "hilarious", "ridiculous", "laugh", "laughed",
	"silly", "absurd", "weird", "kidding", "ironically", "spoiler", "plot twist",
}

// EmpathyWords raise empathy.
var EmpathyWords = []string{
	"understand", "feel", "feeling", "imagine", "struggle", "struggling", "hard", "hear",
	"sorry", "support", "you're not alone", "been there", "i get it", "it's okay", "difficult",
	"frustrating", "overwhelming", "worry", "afraid",
}

// ImperativeStarters are verbs that often open a direct instruction.
var ImperativeStarters = toSet(
	"do", "don't", "stop", "start", "try", "make", "take", "go", "use", "read", "write",
	"build", "ask", "remember", "forget", "think", "look", "listen", "focus", "pick", "choose",
	"keep", "never", "always", "get",
)

func toSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
