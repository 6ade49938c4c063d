package spotted_test

import (
	"log"
	"strings"
	"testing"

	"github.com/spottedbot/spotted"
	"github.com/stretchr/testify/assert"
)

func TestDebugfLogsWhenDebugEnabled(t *testing.T) {
	var b strings.Builder
	sl := spotted.NewSLogger(log.New(&b, "", 0), true)

	sl.Debugf("Writing a log statement for my little %s", "red bird")

	assert.Equal(t, "Writing a log statement for my little red bird\n", b.String())
}

func TestDebugfSilentWhenDebugDisabled(t *testing.T) {
	var b strings.Builder
	sl := spotted.NewSLogger(log.New(&b, "", 0), false)

	sl.Debugf("Writing a log statement for my little %s", "red bird")

	assert.Equal(t, "", b.String())
}

func TestPrintfAlwaysLogs(t *testing.T) {
	var b strings.Builder
	sl := spotted.NewSLogger(log.New(&b, "", 0), false)

	sl.Printf("spot [%s] scored", "100.001000")

	assert.Equal(t, "spot [100.001000] scored\n", b.String())
}
