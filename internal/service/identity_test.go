package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentityIPHash_SentinelForMissingIP(t *testing.T) {
	// Клиенты без IP делят один общий bucket
	a := Identity{}
	b := Identity{Fingerprint: "device-1"}

	assert.Equal(t, HashIP("anonymous"), a.IPHash())
	assert.Equal(t, a.IPHash(), b.IPHash())
}

func TestIdentityIPHash_DistinctForDifferentIPs(t *testing.T) {
	a := Identity{IP: "203.0.113.7"}
	b := Identity{IP: "203.0.113.8"}

	assert.NotEqual(t, a.IPHash(), b.IPHash())
	assert.Len(t, a.IPHash(), 64) // hex sha256
}

func TestIdentityKey_PrefersFingerprint(t *testing.T) {
	withFingerprint := Identity{Fingerprint: "device-1", IP: "203.0.113.7"}
	withoutFingerprint := Identity{IP: "203.0.113.7"}

	assert.Equal(t, "fp:device-1", withFingerprint.Key())
	assert.Equal(t, "ip:"+withoutFingerprint.IPHash(), withoutFingerprint.Key())
}
