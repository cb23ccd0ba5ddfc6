package linguistics

import (
	"context"

	"github.com/jonathan/voicedna/internal/lexicon"
	"github.com/jonathan/voicedna/internal/types"
	"golang.org/x/sync/errgroup"
)

const shortSentenceTokens = 10

// toneScorer maps a document to one tonal dimension in [0,1].
type toneScorer func(d *document) float64

var toneScorers = map[types.TonalDimension]toneScorer{
	types.ToneWarmth:     scoreWarmth,
	types.ToneAuthority:  scoreAuthority,
	types.ToneHumor:      scoreHumor,
	types.ToneDirectness: scoreDirectness,
	types.ToneEmpathy:    scoreEmpathy,
}

// scoreTone runs the independent tone scorers concurrently.
func (e *Extractor) scoreTone(ctx context.Context, d *document) (types.TonalAttributes, error) {
	results := make([]float64, len(types.TonalOrder))

	g, gCtx := errgroup.WithContext(ctx)
	for i, dim := range types.TonalOrder {
		score := toneScorers[dim]
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			results[i] = round3(clamp01(score(d)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return types.TonalAttributes{}, err
	}

	var tone types.TonalAttributes
	for i, dim := range types.TonalOrder {
		tone.Set(dim, results[i])
	}
	return tone, nil
}

func scoreWarmth(d *document) float64 {
	return 0.25 + 6*d.density(lexicon.WarmthWords)
}

func scoreAuthority(d *document) float64 {
	return 0.4 + 6*d.density(lexicon.CertaintyWords) - 8*d.density(lexicon.HedgeWords)
}

func scoreHumor(d *document) float64 {
	return 0.05 + 10*d.density(lexicon.HumorWords)
}

func scoreDirectness(d *document) float64 {
	if len(d.sentences) == 0 {
		return 0
	}
	short, imperative := 0, 0
	for _, s := range d.sentences {
		if len(s.Tokens) <= shortSentenceTokens {
			short++
		}
		if lexicon.ImperativeStarters[s.Tokens[0]] {
			imperative++
		}
	}
	n := float64(len(d.sentences))
	return 0.3 + 0.3*float64(short)/n + 0.4*float64(imperative)/n - 6*d.density(lexicon.HedgeWords)
}

func scoreEmpathy(d *document) float64 {
	return 0.15 + 6*d.density(lexicon.EmpathyWords) + 2*d.density([]string{"you", "your"})
}
