// Package evaluator interprets page content streams. It builds the
// operator list a rendering backend replays and extracts the positioned
// text of a page, resolving the fonts, images, patterns and graphics
// states the content refers to.
package evaluator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ScriptRock/pdfeval/internal/scheduler"
)

// Options configure an Evaluator.
type Options struct {
	// IgnoreErrors selects lenient mode: errors in a single resource are
	// logged and reported to the Observer, and evaluation continues
	// without the affected operation.
	IgnoreErrors bool

	// MaxImageSize is the largest number of pixels an image may have.
	// Negative values disable the limit.
	MaxImageSize int

	// MaxFormDepth bounds the nesting of form XObjects.
	MaxFormDepth int

	// TimeSlice and CheckEvery configure how long the evaluator works
	// before it yields, see the scheduler package.
	TimeSlice  time.Duration
	CheckEvery int

	// IncludeMarkedContent adds marked-content boundaries to extracted
	// text.
	IncludeMarkedContent bool
	// KeepWhiteSpace keeps whitespace glyphs in extracted text instead
	// of turning them into gaps.
	KeepWhiteSpace bool
	// DisableNormalization skips NFKC normalization of extracted text.
	DisableNormalization bool

	Logger    *slog.Logger
	Observer  Observer
	Transport Transport

	// Yield is called when a time slot runs out. The default yields the
	// processor to other goroutines.
	Yield func(ctx context.Context) error
}

// DefaultOptions returns strict-mode options without limits on image size.
func DefaultOptions() Options {
	return Options{
		MaxImageSize: -1,
		MaxFormDepth: 64,
		TimeSlice:    scheduler.DefaultSlice,
		CheckEvery:   scheduler.DefaultCheckEvery,
		Logger:       slog.Default(),
	}
}

// Feature identifies the kind of resource an unsupported-feature notice is
// about.
type Feature string

const (
	FeatureXObject       Feature = "xobject"
	FeatureExtGState     Feature = "extGState"
	FeaturePattern       Feature = "pattern"
	FeatureShading       Feature = "shading"
	FeatureColorSpace    Feature = "colorSpace"
	FeatureFontLoad      Feature = "fontLoad"
	FeatureFontType3     Feature = "fontType3"
	FeatureMarkedContent Feature = "markedContent"
	FeatureImage         Feature = "image"
	FeatureOperatorList  Feature = "operatorList"
	FeatureTextContent   Feature = "textContent"
)

// A Notice reports an error that evaluation recovered from, or a feature
// that is not supported.
type Notice struct {
	Feature Feature
	Err     error
}

func (n Notice) String() string {
	return fmt.Sprintf("%s: %v", n.Feature, n.Err)
}

// An Observer receives notices. It may be called from several goroutines
// when evaluators of one document run concurrently.
type Observer interface {
	Notice(n Notice)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(n Notice)

func (f ObserverFunc) Notice(n Notice) { f(n) }
