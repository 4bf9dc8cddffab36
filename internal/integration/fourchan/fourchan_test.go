package fourchan_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/robalyx/embedder/internal/database/types/enum"
	"github.com/robalyx/embedder/internal/integration"
	"github.com/robalyx/embedder/internal/integration/fourchan"
	"github.com/robalyx/embedder/internal/setup/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const threadJSON = `{"posts": [
	{"no": 100, "name": "Anonymous", "sub": "Cats", "com": "first line<br>&gt;second <b>line</b>", "time": 1714566600, "tim": 1714566600123, "ext": ".jpg", "spoiler": 1},
	{"no": 101, "name": "Anonymous", "com": "reply one", "time": 1714566700},
	{"no": 102, "name": "Bob", "com": "reply two"},
	{"no": 103, "name": "Anonymous", "com": "reply three", "time": 1714566900}
]}`

func newClient(t *testing.T, maxMediaSize int) *fourchan.Client {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/g/thread/100.json":
			_, _ = w.Write([]byte(threadJSON))
		case "/api/g/thread/200.json":
			_, _ = w.Write([]byte(`{"posts": []}`))
		case "/media/g/1714566600123.jpg":
			_, _ = w.Write([]byte("jpeg-data"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	logger := zaptest.NewLogger(t)
	httpClient := integration.NewClient(&config.Fetch{
		Timeout:      2000,
		MaxRetries:   1,
		MaxMediaSize: maxMediaSize,
	}, logger)

	return fourchan.New(httpClient, server.URL+"/api", server.URL+"/media", logger)
}

func TestIdentify(t *testing.T) {
	t.Parallel()

	client := newClient(t, 0)

	identity, err := client.Identify(t.Context(), "https://boards.4chan.org/g/thread/100/some-slug")
	require.NoError(t, err)
	assert.Equal(t, enum.IntegrationFourChan, identity.Integration)
	assert.Equal(t, "g_100", identity.UID)

	_, err = client.Identify(t.Context(), "https://boards.4chan.org/g/catalog")
	require.ErrorIs(t, err, integration.ErrInvalidURL)
}

func TestGetPost(t *testing.T) {
	t.Parallel()

	client := newClient(t, 0)

	post, err := client.GetPost(t.Context(), "https://boards.4chan.org/g/thread/100")
	require.NoError(t, err)

	assert.Equal(t, "Anonymous", post.Author)
	assert.Equal(t, "Cats\nfirst line\n>second line", post.Description)
	assert.True(t, post.Spoiler)
	assert.Equal(t, []byte("jpeg-data"), post.Media)
	require.NotNil(t, post.Created)
	assert.Equal(t, int64(1714566600), post.Created.Unix())
	assert.Nil(t, post.Likes)
}

func TestGetPostSkipsOversizedMedia(t *testing.T) {
	t.Parallel()

	client := newClient(t, 4)

	post, err := client.GetPost(t.Context(), "https://boards.4chan.org/g/thread/100")
	require.NoError(t, err)
	assert.Nil(t, post.Media)
}

func TestGetPostEmptyThread(t *testing.T) {
	t.Parallel()

	client := newClient(t, 0)

	_, err := client.GetPost(t.Context(), "https://boards.4chan.org/g/thread/200")
	require.ErrorIs(t, err, integration.ErrPostNotFound)

	_, err = client.GetPost(t.Context(), "https://boards.4chan.org/g/thread/404")
	require.ErrorIs(t, err, integration.ErrPostNotFound)
}

func TestGetComments(t *testing.T) {
	t.Parallel()

	client := newClient(t, 0)

	comments, err := client.GetComments(t.Context(), "https://boards.4chan.org/g/thread/100", 2)
	require.NoError(t, err)
	require.Len(t, comments, 2)

	assert.Equal(t, "reply one", comments[0].Text)
	require.NotNil(t, comments[0].Created)
	assert.Equal(t, "Bob", comments[1].Author)
	assert.Nil(t, comments[1].Created)

	all, err := client.GetComments(t.Context(), "https://boards.4chan.org/g/thread/100", 15)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
