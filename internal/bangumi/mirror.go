package bangumi

import (
	"net/http"
	"path"
	"regexp"

	"github.com/gin-gonic/gin"

	"bangumi/internal/logger"
)

var mirrorFile = regexp.MustCompile(`^/\d+/\d+\.json$`)

// NewMirrorRouter serves a bucketed subject mirror from dir at
// /{id/100}/{id}.json. Any other path is a 404.
func NewMirrorRouter(dir string, log logger.Logger) *gin.Engine {
	if log == nil {
		log = logger.NewNop()
	}

	router := gin.New()
	router.Use(LoggerMiddleware(log), RecoveryMiddleware(log))

	fs := gin.Dir(dir, false)
	router.NoRoute(func(c *gin.Context) {
		p := path.Clean(c.Request.URL.Path)
		if c.Request.Method != http.MethodGet || !mirrorFile.MatchString(p) {
			c.JSON(http.StatusNotFound, gin.H{"msg": "Not Found"})
			return
		}
		f, err := fs.Open(p)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"msg": "Not Found"})
			return
		}
		_ = f.Close()

		c.Header("Content-Type", "application/json; charset=utf-8")
		c.FileFromFS(p, fs)
	})
	return router
}
