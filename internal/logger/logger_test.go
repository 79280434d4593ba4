package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesJSONWithServiceFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Service: "cart", Env: "test", Level: "debug", Output: &buf})

	log.WithField("product_id", 7).Debug("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "cart", entry["service"])
	assert.Equal(t, "test", entry["env"])
	assert.Equal(t, "hello", entry["msg"])
	assert.EqualValues(t, 7, entry["product_id"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logrus.WarnLevel, parseLevel(" Warning "))
	assert.Equal(t, logrus.ErrorLevel, parseLevel("error"))
	assert.Equal(t, logrus.InfoLevel, parseLevel("verbose"))
}
