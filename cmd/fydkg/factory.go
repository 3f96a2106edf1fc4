package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/f3rmion/fydkg/bjj"
	"github.com/f3rmion/fydkg/dkg"
	"github.com/f3rmion/fydkg/ed25519"
	"github.com/f3rmion/fydkg/group"
	"github.com/f3rmion/fydkg/secp256k1"
)

var curves = map[string]func() group.Group{
	"bjj":       func() group.Group { return &bjj.BJJ{} },
	"ed25519":   func() group.Group { return &ed25519.Ed25519{} },
	"secp256k1": func() group.Group { return &secp256k1.Secp256k1{} },
}

// curveNames returns the supported curves in alphabetical order.
func curveNames() []string {
	out := make([]string, 0, len(curves))
	for name := range curves {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func newGroup(name string) (group.Group, error) {
	mk, ok := curves[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unsupported curve: %s (supported: %s)", name, strings.Join(curveNames(), ", "))
	}
	return mk(), nil
}

func newHasher(name string) (dkg.Hasher, error) {
	switch strings.ToLower(name) {
	case "", "sha256":
		return &dkg.SHA256Hasher{}, nil
	case "blake2b":
		return dkg.NewBlake2bHasher(), nil
	default:
		return nil, fmt.Errorf("unsupported hasher: %s (supported: sha256, blake2b)", name)
	}
}
