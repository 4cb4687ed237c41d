package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"github.com/rs/zerolog"
	"testing"
)

type named struct{}

func (named) LoggerComponent() string {
	return "Test.Named"
}

func TestGet(t *testing.T) {
	tests := []struct {
		name string
		c    interface{}
		want string
	}{
		{"component", named{}, "Test.Named"},
		{"string", "Test.String", "Test.String"},
		{"other", 42, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			zl := zerolog.New(buf)
			ctx := zl.WithContext(context.Background())

			l := Get(ctx, tt.c)
			l.Info().Msg("hello")

			out := map[string]interface{}{}
			if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
				t.Fatal(err)
			}
			got, _ := out["component"].(string)
			if got != tt.want {
				t.Errorf("component = %q, want %q", got, tt.want)
			}
		})
	}
}
