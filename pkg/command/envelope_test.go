package command

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RoundTrip(t *testing.T) {
	r := NewRegistry()
	r.Register((&setHeight{}).Key(), func() Command { return &setHeight{} })
	r.Register((&noMerge{}).Key(), func() Command { return &noMerge{} })
	assert.Equal(t, []Key{{"Test", "NoMerge"}, {"Test", "SetHeight"}}, r.Keys())

	envs, err := EncodeAll([]Command{&setHeight{Old: 0.1, New: 0.2}})
	require.NoError(t, err)
	assert.Equal(t, "Test/SetHeight", envs[0].Key().String())

	cmds, err := r.DecodeAll(envs)
	require.NoError(t, err)
	assert.Equal(t, &setHeight{Old: 0.1, New: 0.2}, cmds[0])
}

func TestRegistry_Errors(t *testing.T) {
	r := NewRegistry()
	r.Register((&setHeight{}).Key(), func() Command { return &setHeight{} })

	_, err := r.Decode(Envelope{Parent: "Test", Name: "Missing"})
	assert.ErrorIs(t, err, ErrUnknownCommand)

	_, err = r.Decode(Envelope{Parent: "Test", Name: "SetHeight", Payload: json.RawMessage(`[`)})
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, Key{"Test", "SetHeight"}, decodeErr.Key)
}
