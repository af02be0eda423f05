package cgps

import (
	"context"
	"io"

	"github.com/rs/zerolog/log"

	"sim7600gps/internal/at"
)

// ProbePort is what discovery needs from an opened device: the AT channel
// plus a way to close it again.
type ProbePort interface {
	at.Channel
	io.Closer
}

// OpenFunc opens a candidate device. An error means "not a GPS modem";
// discovery moves on rather than propagating it.
type OpenFunc func(path string) (ProbePort, error)

// Discover returns the first device that answers the GPS status query with a
// final OK line: the preferred device first, then the remaining candidates
// most-recently-enumerated first. Returns "" when nothing answers.
func Discover(ctx context.Context, preferred string, candidates []string, open OpenFunc, tcfg at.Config) string {
	if preferred != "" && probe(ctx, preferred, open, tcfg) {
		return preferred
	}
	for i := len(candidates) - 1; i >= 0; i-- {
		path := candidates[i]
		if path == preferred {
			continue
		}
		if probe(ctx, path, open, tcfg) {
			return path
		}
	}
	return ""
}

func probe(ctx context.Context, path string, open OpenFunc, tcfg at.Config) bool {
	logger := log.With().Str("module", "cgps").Str("device", path).Logger()
	logger.Debug().Msg("probing for gps modem")

	port, err := open(path)
	if err != nil {
		logger.Debug().Err(err).Msg("open failed, skipping")
		return false
	}
	defer port.Close()

	out := at.NewTransport(port, tcfg).Send(ctx, at.CmdStatus, at.OK)
	if out.Kind != at.KindOK || len(out.Transcript) == 0 {
		return false
	}
	return out.Transcript[len(out.Transcript)-1] == at.OK
}
