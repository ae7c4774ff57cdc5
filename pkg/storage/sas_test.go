package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 10, 20, 30, 123_000_000, time.UTC)

func testSigner() *SASSigner {
	return NewSASSigner(SASConfig{
		Account:   "acct",
		Key:       base64.StdEncoding.EncodeToString([]byte("account-secret")),
		Container: "audio-uploads",
		Version:   "2020-02-10",
	}, func() time.Time { return fixedNow })
}

func TestSASIssueQuery(t *testing.T) {
	ref, err := testSigner().Issue("1714558830123-meeting.mp3")
	require.NoError(t, err)

	u, err := url.Parse(ref.AccessURL)
	require.NoError(t, err)
	assert.Equal(t, "acct.blob.core.windows.net", u.Host)
	assert.Equal(t, "/audio-uploads/1714558830123-meeting.mp3", u.Path)

	keys := make([]string, 0, 7)
	for _, kv := range strings.Split(u.RawQuery, "&") {
		keys = append(keys, strings.SplitN(kv, "=", 2)[0])
	}
	assert.Equal(t, []string{"sv", "st", "se", "sr", "sp", "spr", "sig"}, keys)

	q := u.Query()
	assert.Equal(t, "2020-02-10", q.Get("sv"))
	assert.Equal(t, "2024-05-01T10:20:30Z", q.Get("st"))
	assert.Equal(t, "2024-05-01T11:20:30Z", q.Get("se"))
	assert.Equal(t, "b", q.Get("sr"))
	assert.Equal(t, "rcw", q.Get("sp"))
	assert.Equal(t, "https", q.Get("spr"))
	assert.Equal(t, fixedNow.Truncate(time.Second).Add(time.Hour), ref.Expiry)
}

func TestSASSignatureVerifies(t *testing.T) {
	ref, err := testSigner().Issue("rec.wav")
	require.NoError(t, err)
	u, err := url.Parse(ref.AccessURL)
	require.NoError(t, err)

	expected := "rcw\n2024-05-01T10:20:30Z\n2024-05-01T11:20:30Z\n/blob/acct/audio-uploads/rec.wav\n\n\nhttps\n2020-02-10\nb\n\n\n\n\n\n"
	mac := hmac.New(sha256.New, []byte("account-secret"))
	mac.Write([]byte(expected))
	assert.Equal(t, base64.StdEncoding.EncodeToString(mac.Sum(nil)), u.Query().Get("sig"))
}

func TestSASDeterministic(t *testing.T) {
	s := testSigner()
	a, err := s.Issue("same.mp3")
	require.NoError(t, err)
	b, err := s.Issue("same.mp3")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := s.Issue("other.mp3")
	require.NoError(t, err)
	assert.NotEqual(t, a.AccessURL, c.AccessURL)
}

func TestStringToSignShape(t *testing.T) {
	s := testSigner()
	fields := strings.Split(s.stringToSign("x.mp3", "S", "E"), "\n")
	require.Len(t, fields, 15)

	assert.Equal(t, "rcw", fields[0])
	assert.Equal(t, "S", fields[1])
	assert.Equal(t, "E", fields[2])
	assert.Equal(t, "/blob/acct/audio-uploads/x.mp3", fields[3])
	assert.Equal(t, "https", fields[6])
	assert.Equal(t, "2020-02-10", fields[7])
	assert.Equal(t, "b", fields[8])
	for _, i := range []int{4, 5, 9, 10, 11, 12, 13, 14} {
		assert.Empty(t, fields[i], "field %d", i)
	}
}

func TestSASWindowIsOneHour(t *testing.T) {
	for _, now := range []time.Time{
		time.Date(2023, 12, 31, 23, 30, 0, 0, time.UTC),
		time.Date(2024, 2, 29, 0, 0, 59, 999_999_999, time.FixedZone("CET", 3600)),
	} {
		s := NewSASSigner(SASConfig{Account: "a", Key: "", Container: "c", Version: "v"}, func() time.Time { return now })
		ref, err := s.Issue("f")
		require.NoError(t, err)
		q, err := url.Parse(ref.AccessURL)
		require.NoError(t, err)
		st, err := time.Parse(sasTimeLayout, q.Query().Get("st"))
		require.NoError(t, err)
		se, err := time.Parse(sasTimeLayout, q.Query().Get("se"))
		require.NoError(t, err)
		assert.Equal(t, time.Hour, se.Sub(st))
		assert.True(t, strings.HasSuffix(q.Query().Get("st"), "Z"))
	}
}

func TestSASInvalidKey(t *testing.T) {
	s := NewSASSigner(SASConfig{Account: "a", Key: "not base64!", Container: "c", Version: "v"}, nil)
	_, err := s.Issue("f")
	assert.Error(t, err)
}

func TestSASEscapesObjectPath(t *testing.T) {
	ref, err := testSigner().Issue("1-réunion équipe.m4a")
	require.NoError(t, err)
	assert.Contains(t, ref.AccessURL, "/audio-uploads/1-r%C3%A9union%20%C3%A9quipe.m4a?")
}
