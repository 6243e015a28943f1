package agent

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedAll(s *Scanner, chunks ...string) [][]byte {
	var objects [][]byte
	for _, chunk := range chunks {
		objects = append(objects, s.Feed([]byte(chunk))...)
	}
	return objects
}

func TestScanner_singleObject(t *testing.T) {
	s := NewScanner()
	objects := s.Feed([]byte(`{"chunk":"hello"}`))
	require.Len(t, objects, 1)
	assert.JSONEq(t, `{"chunk":"hello"}`, string(objects[0]))
}

func TestScanner_concatenatedObjects(t *testing.T) {
	s := NewScanner()
	objects := s.Feed([]byte(`{"chunk":"Hel"}{"chunk":"lo"}`))
	require.Len(t, objects, 2)
	assert.JSONEq(t, `{"chunk":"Hel"}`, string(objects[0]))
	assert.JSONEq(t, `{"chunk":"lo"}`, string(objects[1]))
}

// Splitting the stream at every possible byte offset must yield the same
// reassembled text regardless of where the flush boundary lands.
func TestScanner_arbitrarySplitPoints(t *testing.T) {
	raw := `{"chunk":"Hel"}{"chunk":"lo"}`
	for i := 0; i <= len(raw); i++ {
		t.Run(fmt.Sprintf("split_at_%d", i), func(t *testing.T) {
			s := NewScanner()
			objects := feedAll(s, raw[:i], raw[i:])
			require.Len(t, objects, 2, "split at %d", i)

			var text string
			for _, obj := range objects {
				var ev StreamEvent
				require.NoError(t, json.Unmarshal(obj, &ev))
				text += ev.Chunk
			}
			assert.Equal(t, "Hello", text)
		})
	}
}

func TestScanner_objectSpanningManyReads(t *testing.T) {
	raw := `{"status":"success","response":"All done"}`
	s := NewScanner()
	var objects [][]byte
	for _, b := range []byte(raw) {
		objects = append(objects, s.Feed([]byte{b})...)
	}
	require.Len(t, objects, 1)

	var ev StreamEvent
	require.NoError(t, json.Unmarshal(objects[0], &ev))
	assert.True(t, ev.Done())
	assert.Equal(t, "All done", ev.Response)
}

func TestScanner_bracesInsideStrings(t *testing.T) {
	s := NewScanner()
	objects := s.Feed([]byte(`{"chunk":"a } b { c"}{"chunk":"\"}{\""}`))
	require.Len(t, objects, 2)

	var first, second StreamEvent
	require.NoError(t, json.Unmarshal(objects[0], &first))
	require.NoError(t, json.Unmarshal(objects[1], &second))
	assert.Equal(t, "a } b { c", first.Chunk)
	assert.Equal(t, `"}{"`, second.Chunk)
}

func TestScanner_garbageBetweenObjectsDropped(t *testing.T) {
	s := NewScanner()
	objects := feedAll(s, "\n}}garbage", `{"chunk":"ok"}`, "trailing noise\n")
	require.Len(t, objects, 1)
	assert.JSONEq(t, `{"chunk":"ok"}`, string(objects[0]))
}

func TestScanner_nestedObjects(t *testing.T) {
	s := NewScanner()
	raw := `{"status":"success","response":"x","data_retrieved":[{"k":{"v":1}}]}`
	objects := feedAll(s, raw[:20], raw[20:])
	require.Len(t, objects, 1)
	assert.JSONEq(t, raw, string(objects[0]))
}

func TestScanner_incompleteObjectHeldBack(t *testing.T) {
	s := NewScanner()
	assert.Empty(t, s.Feed([]byte(`{"chunk":"par`)))
	objects := s.Feed([]byte(`tial"}`))
	require.Len(t, objects, 1)
	assert.JSONEq(t, `{"chunk":"partial"}`, string(objects[0]))
}
