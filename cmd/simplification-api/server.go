package main

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gitlab.mdcatapult.io/informatics/software-engineering/text-simplification/lib"
)

type HttpError struct {
	code int
	error
}

func NewHttpError(code int, err error) HttpError {
	return HttpError{
		code:  code,
		error: err,
	}
}

type contentType int

const (
	contentTypeJSON contentType = iota
	contentTypePlain
	contentTypeHTML
)

var allowedContentTypeEnumMap = map[string]contentType{
	"application/json": contentTypeJSON,
	"text/plain":       contentTypePlain,
	"text/html":        contentTypeHTML,
}

type simplifyRequest struct {
	Text string `json:"text"`
}

type batchRequest struct {
	Texts []string `json:"texts"`
}

type server struct {
	controller controller
}

func (s server) RegisterRoutes(r *gin.Engine) {
	r.POST("/simplify", requestId, validateBody, s.Simplify)
	r.POST("/batch", requestId, validateBody, s.Batch)
	r.GET("/backends", s.ListBackends)
	r.GET("/health", s.Health)
}

// requestId tags the request so that downstream log lines can be correlated.
func requestId(c *gin.Context) {
	c.Set("request_id", uuid.New().String())
	c.Next()
}

func (s server) Simplify(c *gin.Context) {
	text, err := readText(c)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, s.controller.Simplify(c.Request.Context(), text))
}

func (s server) Batch(c *gin.Context) {
	if ct, ok := allowedContentTypeEnumMap[c.ContentType()]; !ok || ct != contentTypeJSON {
		handleError(c, NewHttpError(http.StatusBadRequest, errors.New("invalid content type - must be application/json")))
		return
	}

	var body batchRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		handleError(c, NewHttpError(http.StatusBadRequest, errors.New("invalid request body - must be json with a texts array")))
		return
	}
	if len(body.Texts) == 0 {
		handleError(c, NewHttpError(http.StatusBadRequest, errors.New("texts must contain at least one entry")))
		return
	}

	c.JSON(http.StatusOK, s.controller.Batch(c.Request.Context(), body.Texts))
}

func (s server) ListBackends(c *gin.Context) {
	c.JSON(http.StatusOK, s.controller.ListBackends())
}

func (s server) Health(c *gin.Context) {
	if !s.controller.Ready(c.Request.Context()) {
		c.JSON(http.StatusServiceUnavailable, map[string]interface{}{"status": "unavailable", "lexicon_ready": false})
		return
	}
	c.JSON(http.StatusOK, map[string]interface{}{"status": "ok", "lexicon_ready": true})
}

// readText decodes the request body according to its declared content type.
func readText(c *gin.Context) (string, error) {
	ct, ok := allowedContentTypeEnumMap[c.ContentType()]
	if !ok {
		return "", NewHttpError(http.StatusBadRequest, errors.New("invalid content type - must be application/json, text/plain or text/html"))
	}

	switch ct {
	case contentTypeJSON:
		var body simplifyRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			return "", NewHttpError(http.StatusBadRequest, errors.New("invalid request body - must be json with a text field"))
		}
		return body.Text, nil
	case contentTypeHTML:
		text, err := lib.HtmlToText(c.Request.Body)
		if err != nil {
			return "", NewHttpError(http.StatusBadRequest, err)
		}
		return text, nil
	default:
		b, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}

func validateBody(c *gin.Context) {
	if c.Request.Body == nil {
		handleError(c, NewHttpError(http.StatusBadRequest, errors.New("request body missing")))
	} else if _, err := c.Request.Body.Read(nil); err == io.EOF {
		handleError(c, NewHttpError(http.StatusBadRequest, errors.New("request body missing")))
	} else {
		c.Next()
	}
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		abort(c, http.StatusInternalServerError, errors.New("abort called on nil error"))
		return
	}
	switch e := err.(type) {
	case HttpError:
		abort(c, e.code, e)
	default:
		abort(c, http.StatusInternalServerError, e)
	}
}

func abort(c *gin.Context, code int, err error) {
	c.JSON(code, map[string]interface{}{
		"status":  code,
		"message": err.Error(),
	})
	c.Abort()
}
