package actor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddressStringLocalOmitsHostAndPort(t *testing.T) {
	a := NewLocalAddress("actor", "mysys")
	assert.Equal(t, "actor://mysys", a.String())
	assert.True(t, a.isLocal())
}

func TestAddressStringWithHostAndPort(t *testing.T) {
	a := Address{Protocol: "actor", System: "mysys", Host: "10.0.0.1", Port: 5050}
	assert.Equal(t, "actor://mysys@10.0.0.1:5050", a.String())
	assert.False(t, a.isLocal())
}

func TestAddressStringWithHostNoPort(t *testing.T) {
	a := Address{Protocol: "actor", System: "mysys", Host: "10.0.0.1"}
	assert.Equal(t, "actor://mysys@10.0.0.1", a.String())
}
