// File: internal/draft/codec.go
package draft

import (
	"encoding/json"
	"fmt"

	"marketplace_onboarding/internal/config"
	"marketplace_onboarding/internal/platform/crypto"
)

// Codec serializes drafts to JSON and seals the result, binding it to the draft key.
type Codec struct {
	sealer *crypto.Sealer
}

// NewCodec returns a codec sealing with DRAFT_SEAL_KEY.
func NewCodec(cfg *config.Config) (*Codec, error) {
	sealer, err := crypto.NewSealer(cfg.DraftSealKey)
	if err != nil {
		return nil, fmt.Errorf("draft codec: %w", err)
	}
	return &Codec{sealer: sealer}, nil
}

// NewCodecWithSealer is used where the sealer is already built.
func NewCodecWithSealer(sealer *crypto.Sealer) *Codec {
	return &Codec{sealer: sealer}
}

func (c *Codec) Encode(sid string, d *Draft) ([]byte, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal draft: %w", err)
	}
	sealed, err := c.sealer.Seal(raw, []byte(Key(sid)))
	if err != nil {
		return nil, fmt.Errorf("seal draft: %w", err)
	}
	return sealed, nil
}

func (c *Codec) Decode(sid string, data []byte) (*Draft, error) {
	raw, err := c.sealer.Open(data, []byte(Key(sid)))
	if err != nil {
		return nil, fmt.Errorf("open draft: %w", err)
	}
	var d Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("unmarshal draft: %w", err)
	}
	return &d, nil
}
