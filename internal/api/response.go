package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JustJay7/court-fetcher/internal/service"
)

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

func respondValidation(c *gin.Context, err *service.ValidationError) {
	body := gin.H{
		"success": false,
		"error":   err.Message,
	}
	if len(err.Required) > 0 {
		body["required"] = err.Required
		body["missing"] = err.Missing
	}
	c.JSON(http.StatusBadRequest, body)
}

func respondOperational(c *gin.Context, msg string, err error) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   msg,
		"message": err.Error(),
	})
}
