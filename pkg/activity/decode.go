package activity

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// TokenExchangeValue is the payload of a "signin/tokenExchange" invoke.
type TokenExchangeValue struct {
	ID             string `mapstructure:"id"`
	Token          string `mapstructure:"token"`
	ConnectionName string `mapstructure:"connectionName"`
}

// SignInStateValue is the payload of a "signin/verifyState" invoke.
type SignInStateValue struct {
	State string `mapstructure:"state"`
}

// TaskFetchValue is the payload of a "task/fetch" invoke.
type TaskFetchValue struct {
	Data map[string]any `mapstructure:"data"`
}

// DecodeValue decodes an activity's raw Value payload into a typed struct.
// Unknown fields are ignored; a nil Value decodes to the zero value.
func DecodeValue[T any](a *Activity) (T, error) {
	var out T
	if a.Value == nil {
		return out, nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return out, fmt.Errorf("building decoder: %w", err)
	}
	if err := dec.Decode(a.Value); err != nil {
		return out, fmt.Errorf("decoding %s value: %w", a.Type, err)
	}
	return out, nil
}
