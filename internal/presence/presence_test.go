package presence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker_RegisterDisconnect(t *testing.T) {
	tr := NewTracker()
	assert.True(t, tr.Register("张三"))
	assert.False(t, tr.Register("张三")) // second device, already on roster
	assert.True(t, tr.Register("李四"))

	assert.ElementsMatch(t, []string{"张三", "李四"}, tr.Roster())

	assert.False(t, tr.Disconnect("张三")) // one device still connected
	assert.Contains(t, tr.Roster(), "张三")
	assert.True(t, tr.Disconnect("张三"))
	assert.NotContains(t, tr.Roster(), "张三")
}

func TestTracker_UnknownAndEmptyNames(t *testing.T) {
	tr := NewTracker()
	assert.False(t, tr.Disconnect("nobody"))
	assert.False(t, tr.Register(""))
	assert.Empty(t, tr.Roster())
}
