package guidance

import "github.com/gin-gonic/gin"

// Register mounts /predict and its /analyze-loan alias. mw runs before the
// handler on both routes.
func (h *Handler) Register(r gin.IRouter, mw ...gin.HandlerFunc) {
	chain := append(append([]gin.HandlerFunc{}, mw...), h.Predict)
	r.POST("/predict", chain...)
	r.POST("/analyze-loan", chain...)
}
