package que

import (
	"fmt"

	"github.com/rs/zerolog"
)

// InspectOptions configures an inspect step.
type InspectOptions[K comparable] struct {
	// Only restricts the logged changes to these names. All changes are logged when empty.
	Only []K
}

func inspect[K comparable, V any](logger zerolog.Logger, position int, opts InspectOptions[K], changes Changes[K, V]) {
	logger.Info().
		Int("position", position).
		Interface("changes", inspectView(opts, changes)).
		Msg("inspect")
}

// inspectView keys the changes by their printed name so any comparable name can be encoded.
func inspectView[K comparable, V any](opts InspectOptions[K], changes Changes[K, V]) map[string]any {
	if len(opts.Only) == 0 {
		view := make(map[string]any, len(changes))
		for name, value := range changes {
			view[fmt.Sprint(name)] = value
		}

		return view
	}

	view := make(map[string]any, len(opts.Only))

	for _, name := range opts.Only {
		if value, ok := changes[name]; ok {
			view[fmt.Sprint(name)] = value
		}
	}

	return view
}
