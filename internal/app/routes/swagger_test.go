package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

var pathParam = regexp.MustCompile(`[:*](\w+)`)

type swaggerDoc struct {
	BasePath    string                                `json:"basePath"`
	Paths       map[string]map[string]json.RawMessage `json:"paths"`
	Definitions map[string]json.RawMessage            `json:"definitions"`
}

func readSwaggerDoc(t *testing.T) swaggerDoc {
	t.Helper()
	raw, err := swag.ReadDoc()
	require.NoError(t, err)
	var doc swaggerDoc
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	return doc
}

func TestSwagger_DocumentsEveryMountedRoute(t *testing.T) {
	env := newTestEnv(30)
	doc := readSwaggerDoc(t)
	require.Equal(t, "/api/v1", doc.BasePath)

	mounted := 0
	for _, r := range env.router.Routes() {
		if !strings.HasPrefix(r.Path, doc.BasePath+"/") {
			continue
		}
		mounted++
		path := pathParam.ReplaceAllString(strings.TrimPrefix(r.Path, doc.BasePath), "{$1}")
		ops, ok := doc.Paths[path]
		if assert.True(t, ok, "%s %s is not documented", r.Method, path) {
			assert.Contains(t, ops, strings.ToLower(r.Method), "%s %s is not documented", r.Method, path)
		}
	}
	assert.Greater(t, mounted, 40)
}

func TestSwagger_ReferencedDefinitionsExist(t *testing.T) {
	raw, err := swag.ReadDoc()
	require.NoError(t, err)
	doc := readSwaggerDoc(t)

	refs := regexp.MustCompile(`#/definitions/([\w.]+)`).FindAllStringSubmatch(raw, -1)
	require.NotEmpty(t, refs)
	for _, ref := range refs {
		assert.Contains(t, doc.Definitions, ref[1])
	}

	var document struct {
		Properties map[string]json.RawMessage `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(doc.Definitions["models.Document"], &document))
	assert.Contains(t, document.Properties, "downloadUrl")
	assert.NotContains(t, document.Properties, "fileUrl")
}

func TestSwagger_ServesDocument(t *testing.T) {
	router := gin.New()
	SetupSwagger(router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"/institution/programs"`)
}
