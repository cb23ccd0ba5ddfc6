package profile

import (
	"maps"

	"github.com/jonathan/voicedna/internal/types"
)

// Clone returns a deep copy of p.
func Clone(p *types.VoiceDNA) *types.VoiceDNA {
	if p == nil {
		return nil
	}
	c := *p

	c.SpokenPatterns.Vocabulary.FrequentWords = append([]types.WordFrequency(nil), p.SpokenPatterns.Vocabulary.FrequentWords...)
	c.SpokenPatterns.Vocabulary.SignaturePhrases = append([]string(nil), p.SpokenPatterns.Vocabulary.SignaturePhrases...)
	c.SpokenPatterns.Enthusiasm.ExcitedTopics = append([]string(nil), p.SpokenPatterns.Enthusiasm.ExcitedTopics...)
	c.LearnedRules = append([]types.LearnedRule(nil), p.LearnedRules...)
	c.History = append([]types.ContributionRecord(nil), p.History...)

	c.ReferentInfluences = CloneInfluences(p.ReferentInfluences)

	c.Votes = types.Votes{
		SentenceLength:      cloneTally(p.Votes.SentenceLength),
		StorytellingStyle:   cloneTally(p.Votes.StorytellingStyle),
		UsesQuestions:       cloneTally(p.Votes.UsesQuestions),
		UsesAnalogies:       cloneTally(p.Votes.UsesAnalogies),
		StructurePreference: cloneTally(p.Votes.StructurePreference),
		ParagraphLength:     cloneTally(p.Votes.ParagraphLength),
		OpeningStyle:        cloneTally(p.Votes.OpeningStyle),
		ClosingStyle:        cloneTally(p.Votes.ClosingStyle),
	}
	return &c
}

func cloneTally(t types.VoteTally) types.VoteTally {
	return types.VoteTally{
		Counts: maps.Clone(t.Counts),
		Recent: append([]string(nil), t.Recent...),
	}
}

// CloneInfluences returns a deep copy of ri.
func CloneInfluences(ri *types.ReferentInfluences) *types.ReferentInfluences {
	if ri == nil {
		return nil
	}
	out := &types.ReferentInfluences{
		UserWeight: ri.UserWeight,
		Referents:  make([]types.ReferentInfluence, len(ri.Referents)),
	}
	for i, r := range ri.Referents {
		r.ActiveTraits = append([]string(nil), r.ActiveTraits...)
		out.Referents[i] = r
	}
	return out
}
