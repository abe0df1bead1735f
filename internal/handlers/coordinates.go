package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"print-personalizer/internal/coords"
	"print-personalizer/internal/storage"

	"github.com/gin-gonic/gin"
)

const errInvalidCanvas = "canvas width and height must be positive"

type toRelativeRequest struct {
	Absolute coords.Absolute   `json:"absolute"`
	Canvas   coords.CanvasSize `json:"canvas"`
}

func (h *Handler) ToRelative(c *gin.Context) {
	var req toRelativeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if !req.Canvas.Valid() {
		badRequest(c, errInvalidCanvas)
		return
	}
	c.JSON(http.StatusOK, gin.H{"relative": coords.AbsoluteToRelative(req.Absolute, req.Canvas)})
}

type toAbsoluteRequest struct {
	Relative coords.Relative   `json:"relative"`
	Canvas   coords.CanvasSize `json:"canvas"`
}

func (h *Handler) ToAbsolute(c *gin.Context) {
	var req toAbsoluteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if !req.Canvas.Valid() {
		badRequest(c, errInvalidCanvas)
		return
	}
	c.JSON(http.StatusOK, gin.H{"absolute": coords.RelativeToAbsolute(req.Relative, req.Canvas)})
}

type scaleRequest struct {
	Relative coords.Relative   `json:"relative"`
	From     coords.CanvasSize `json:"from"`
	To       coords.CanvasSize `json:"to"`
}

// Scale re-projects a relative box from one reference image size onto
// another, keeping proportions.
func (h *Handler) Scale(c *gin.Context) {
	var req scaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if !req.From.Valid() || !req.To.Valid() {
		badRequest(c, "from and to sizes must be positive")
		return
	}
	c.JSON(http.StatusOK, gin.H{"relative": coords.ScaleRelative(req.Relative, req.From, req.To)})
}

type normalizeRequest struct {
	Area coords.Relative `json:"area"`
}

// Normalize clamps an area into the canvas and reports whether the input
// already was inside it.
func (h *Handler) Normalize(c *gin.Context) {
	var req normalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"area":  coords.NormalizeArea(req.Area),
		"valid": coords.ValidateRelative(req.Area),
	})
}

type fitRequest struct {
	Image  coords.CanvasSize `json:"image"`
	Canvas coords.CanvasSize `json:"canvas"`
	Area   *coords.Relative  `json:"area"`
}

func (h *Handler) Fit(c *gin.Context) {
	var req fitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if !req.Image.Valid() || !req.Canvas.Valid() {
		badRequest(c, "image and canvas sizes must be positive")
		return
	}

	t := coords.ScaleImageToCanvas(req.Image, req.Canvas)
	resp := gin.H{"transform": t}
	if req.Area != nil {
		resp["area"] = coords.PrintAreaOnScaledImage(coords.NormalizeArea(*req.Area), t, req.Canvas)
	}
	c.JSON(http.StatusOK, resp)
}

type placementResponse struct {
	AreaID    string                `json:"areaId"`
	Relative  coords.Relative       `json:"relative"`
	Image     coords.Dimensions     `json:"image"`
	Canvas    coords.CanvasSize     `json:"canvas"`
	Transform coords.ImageTransform `json:"transform"`
	Placement coords.Absolute       `json:"placement"`
}

// Placement renders a stored print area onto an editor canvas of the given
// size, letterboxing the side image into it.
func (h *Handler) Placement(c *gin.Context) {
	canvas, ok := canvasFromQuery(c)
	if !ok {
		badRequest(c, errInvalidCanvas)
		return
	}

	ctx := c.Request.Context()
	p, err := h.areas.GetPrintAreaPlacement(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrPrintAreaNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "print area not found"})
			return
		}
		h.internalError(c, "failed to load print area", err)
		return
	}

	dims := h.images.Load(ctx, p.SideImageURL)
	area := coords.NormalizeArea(p.RelativeBox())
	t := coords.ScaleImageToCanvas(dims.CanvasSize, canvas)

	c.JSON(http.StatusOK, placementResponse{
		AreaID:    p.ID,
		Relative:  area,
		Image:     dims,
		Canvas:    canvas,
		Transform: t,
		Placement: coords.PrintAreaOnScaledImage(area, t, canvas),
	})
}

// canvasFromQuery reads canvasWidth/canvasHeight, defaulting to the
// standard editor canvas when both are absent.
func canvasFromQuery(c *gin.Context) (coords.CanvasSize, bool) {
	w, h := c.Query("canvasWidth"), c.Query("canvasHeight")
	if w == "" && h == "" {
		return coords.StandardCanvas, true
	}
	width, err := strconv.ParseFloat(w, 64)
	if err != nil {
		return coords.CanvasSize{}, false
	}
	height, err := strconv.ParseFloat(h, 64)
	if err != nil {
		return coords.CanvasSize{}, false
	}
	if math.IsInf(width, 0) || math.IsInf(height, 0) {
		return coords.CanvasSize{}, false
	}
	canvas := coords.CanvasSize{Width: width, Height: height}
	return canvas, canvas.Valid()
}
