package coords

// ImageTransform places a reference image inside a canvas after an
// aspect-preserving fit.
type ImageTransform struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	ScaleX float64 `json:"scaleX"`
	ScaleY float64 `json:"scaleY"`
}

// ScaleImageToCanvas returns the largest centered rectangle with the image's
// aspect ratio that fits inside canvas. A relatively wider image is pinned to
// the canvas width, anything else to the canvas height.
func ScaleImageToCanvas(image, canvas CanvasSize) ImageTransform {
	if !image.Valid() || !canvas.Valid() {
		return ImageTransform{}
	}

	imageRatio := image.AspectRatio()

	var w, h float64
	if imageRatio > canvas.AspectRatio() {
		w = canvas.Width
		h = canvas.Width / imageRatio
	} else {
		h = canvas.Height
		w = canvas.Height * imageRatio
	}

	return ImageTransform{
		Left:   (canvas.Width - w) / 2,
		Top:    (canvas.Height - h) / 2,
		Width:  w,
		Height: h,
		ScaleX: w / image.Width,
		ScaleY: h / image.Height,
	}
}

// PrintAreaOnScaledImage maps an area defined in percent of the image itself
// onto canvas pixels, given where the image was placed by ScaleImageToCanvas.
// canvas is accepted for symmetry with the other helpers; the placement is
// fully described by t.
func PrintAreaOnScaledImage(area Relative, t ImageTransform, canvas CanvasSize) Absolute {
	onImage := RelativeToAbsolute(area, CanvasSize{Width: t.Width, Height: t.Height})
	return Absolute{
		X:      onImage.X + t.Left,
		Y:      onImage.Y + t.Top,
		Width:  onImage.Width,
		Height: onImage.Height,
	}
}
