package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidCPF(t *testing.T) {
	require.NoError(t, RegisterValidators())

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/", func(c *gin.Context) {
		var body struct {
			CPF string `json:"cpf" binding:"required,cpf"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusOK)
	})

	cases := []struct {
		name string
		cpf  string
		ok   bool
	}{
		{"valid punctuated", "529.982.247-25", true},
		{"valid bare", "52998224725", true},
		{"wrong check digit", "529.982.247-24", false},
		{"repeated digits", "111.111.111-11", false},
		{"too short", "1234567890", false},
		{"letters", "529.982.24a-25", false},
		{"empty", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/",
				strings.NewReader(`{"cpf":"`+tc.cpf+`"}`))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			if tc.ok {
				assert.Equal(t, http.StatusOK, w.Code)
			} else {
				assert.Equal(t, http.StatusBadRequest, w.Code)
			}
		})
	}
}
