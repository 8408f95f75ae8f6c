package response

import "github.com/gin-gonic/gin"

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// RespondSuccess writes a success envelope
func RespondSuccess(c *gin.Context, code int, message string, data interface{}) {
	RespondJSON(c, StatusSuccess, code, message, data, nil)
}

// RespondError writes an error envelope carrying detail and aborts the chain
func RespondError(c *gin.Context, code int, message string, detail *ErrorDetail) {
	var errs interface{}
	if detail != nil {
		errs = detail
	}
	RespondJSON(c, StatusError, code, message, nil, errs)
	c.Abort()
}
