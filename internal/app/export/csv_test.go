package export

import (
	"bytes"
	"testing"

	"github.com/issafronov/redirectmap/internal/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	status, ok := 200, true
	result := models.EmptyResult(models.RunMeta{})
	result.Pairs = append(result.Pairs,
		models.MappingPair{
			From:         "https://a.com/blog/hello-world",
			To:           "https://a.com/articles/hello-world",
			Confidence:   0.95,
			Note:         "slug_exact;retry_1",
			Method:       "301",
			VerifyStatus: &status,
			VerifyOk:     &ok,
		},
		models.MappingPair{
			From:       "https://a.com/p?a=1,2",
			To:         "https://a.com/q",
			Confidence: 0.75,
			Note:       models.NotePathSimilar,
			Method:     "301",
		},
	)
	result.Rules = append(result.Rules, models.PrefixRule{FromPrefix: "/blog/", ToPrefix: "/articles/", Support: 5})

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, result))

	want := "from,to,confidence,note,method,verify_status,verify_ok\n" +
		"https://a.com/blog/hello-world,https://a.com/articles/hello-world,0.95,slug_exact;retry_1,301,200,true\n" +
		"\"https://a.com/p?a=1,2\",https://a.com/q,0.75,path_similar,301,,\n" +
		"\n" +
		"from_prefix,to_prefix,support\n" +
		"/blog/,/articles/,5\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, models.EmptyResult(models.RunMeta{})))
	assert.Equal(t, "from,to,confidence,note,method,verify_status,verify_ok\n", buf.String())
}
