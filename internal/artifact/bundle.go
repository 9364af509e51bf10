package artifact

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"callsearch/internal/model"
	"callsearch/internal/timestamp"
)

// Bundle is everything loaded for one call. Absent artifacts leave their
// fields empty.
type Bundle struct {
	Ref        CallRef
	Transcript string
	Chat       string
	Config     timestamp.SyncConfig
	HasConfig  bool
	Payloads   []model.Payload

	// Raw holds the bytes of every artifact that was found, keyed by file name.
	Raw map[string][]byte
}

// Has reports whether the named artifact was found.
func (b *Bundle) Has(name string) bool {
	_, ok := b.Raw[name]
	return ok
}

// Count returns the number of artifacts found.
func (b *Bundle) Count() int { return len(b.Raw) }

var payloadFiles = []struct {
	name string
	kind model.PayloadKind
}{
	{FileAgenda, model.KindAgenda},
	{FileTldr, model.KindTldr},
	{FileSummary, model.KindSummary},
}

// Decode builds a bundle from raw artifact bytes. Artifacts that fail to
// decode are logged and treated as absent.
func Decode(ref CallRef, raw map[string][]byte, log *zap.Logger) *Bundle {
	if log == nil {
		log = zap.NewNop()
	}
	b := &Bundle{Ref: ref, Raw: make(map[string][]byte, len(raw))}
	for name, data := range raw {
		if IsArtifact(name) {
			b.Raw[name] = data
		}
	}

	b.Transcript = string(b.Raw[FileTranscript])
	b.Chat = string(b.Raw[FileChat])

	if data, ok := b.Raw[FileConfig]; ok {
		if err := json.Unmarshal(data, &b.Config); err != nil {
			log.Warn("invalid sync config", zap.String("call", ref.Key()), zap.Error(err))
			b.Config = timestamp.SyncConfig{}
		} else {
			b.HasConfig = true
		}
	}

	for _, pf := range payloadFiles {
		data, ok := b.Raw[pf.name]
		if !ok {
			continue
		}
		p, err := model.ParsePayload(pf.kind, data)
		if err != nil {
			log.Warn("invalid payload",
				zap.String("call", ref.Key()),
				zap.String("file", pf.name),
				zap.Error(err),
			)
			continue
		}
		b.Payloads = append(b.Payloads, p)
	}
	return b
}

// Load fetches every artifact of ref concurrently. A missing or failing
// artifact is logged and left out; Load itself never fails. Cancelling ctx
// stops the fetches that have not started and keeps what already arrived.
func Load(ctx context.Context, src Source, ref CallRef, log *zap.Logger) *Bundle {
	if log == nil {
		log = zap.NewNop()
	}

	data := make([][]byte, len(Files))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range Files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b, err := src.Get(gctx, ref, name)
			switch {
			case err == nil:
				data[i] = b
			case errors.Is(err, ErrNotFound):
				log.Debug("artifact absent", zap.String("call", ref.Key()), zap.String("file", name))
			case ctx.Err() != nil:
				return ctx.Err()
			default:
				log.Warn("artifact fetch failed",
					zap.String("call", ref.Key()),
					zap.String("file", name),
					zap.Error(err),
				)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Debug("call load cancelled", zap.String("call", ref.Key()), zap.Error(err))
	}

	raw := make(map[string][]byte, len(Files))
	for i, name := range Files {
		if data[i] != nil {
			raw[name] = data[i]
		}
	}

	b := Decode(ref, raw, log)
	log.Debug("call loaded", zap.String("call", ref.Key()), zap.Int("artifacts", b.Count()))
	return b
}
