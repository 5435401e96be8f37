package relay

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nostrbank/ledgerd/internal/nostrevent"
)

func TestEncodeReq(t *testing.T) {
	since := int64(100)
	filters := []nostrevent.Filter{{Kinds: []int{nostrevent.KindTransaction}, Since: &since}}
	data, err := encodeReq("sub1", filters)
	require.NoError(t, err)

	var raw []json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 3)

	var kind, subID string
	require.NoError(t, json.Unmarshal(raw[0], &kind))
	require.NoError(t, json.Unmarshal(raw[1], &subID))
	require.Equal(t, "REQ", kind)
	require.Equal(t, "sub1", subID)
}

func TestEncodeClose(t *testing.T) {
	data, err := encodeClose("sub1")
	require.NoError(t, err)
	require.JSONEq(t, `["CLOSE","sub1"]`, string(data))
}

func TestEncodeEvent(t *testing.T) {
	ev := &nostrevent.Event{ID: "abc", Kind: nostrevent.KindTransaction}
	data, err := encodeEvent(ev)
	require.NoError(t, err)

	var raw []json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 2)
	var kind string
	require.NoError(t, json.Unmarshal(raw[0], &kind))
	require.Equal(t, "EVENT", kind)
}

func TestDecodeIncoming_Event(t *testing.T) {
	frame := []byte(`["EVENT","sub1",{"id":"abc","pubkey":"signer","kind":1112,"created_at":1,"tags":[],"content":"{}"}]`)
	f, err := decodeIncoming(frame)
	require.NoError(t, err)
	require.Equal(t, frameEvent, f.kind)
	require.Equal(t, "sub1", f.subID)

	var ev nostrevent.Event
	require.NoError(t, json.Unmarshal(f.payload, &ev))
	require.Equal(t, "abc", ev.ID)
}

func TestDecodeIncoming_Notice(t *testing.T) {
	frame := []byte(`["NOTICE","something went wrong"]`)
	f, err := decodeIncoming(frame)
	require.NoError(t, err)
	require.Equal(t, frameNotice, f.kind)

	var msg string
	require.NoError(t, json.Unmarshal(f.payload, &msg))
	require.Equal(t, "something went wrong", msg)
}

func TestDecodeIncoming_Malformed(t *testing.T) {
	_, err := decodeIncoming([]byte(`not json`))
	require.Error(t, err)

	_, err = decodeIncoming([]byte(`[]`))
	require.Error(t, err)
}
