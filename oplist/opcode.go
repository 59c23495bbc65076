// Package oplist holds the operator list, the replayable drawing program
// an evaluator produces for a rendering backend.
package oplist

import "strconv"

// An OpCode identifies one drawing operation. The numbering is the one
// rendering backends replay, so values must never be reordered.
type OpCode int

// Drawing operations.
const (
	OpUnknown OpCode = iota
	OpDependency
	OpSetLineWidth
	OpSetLineCap
	OpSetLineJoin
	OpSetMiterLimit
	OpSetDash
	OpSetRenderingIntent
	OpSetFlatness
	OpSetGState
	OpSave
	OpRestore
	OpTransform
	OpMoveTo
	OpLineTo
	OpCurveTo
	OpCurveTo2
	OpCurveTo3
	OpClosePath
	OpRectangle
	OpStroke
	OpCloseStroke
	OpFill
	OpEOFill
	OpFillStroke
	OpEOFillStroke
	OpCloseFillStroke
	OpCloseEOFillStroke
	OpEndPath
	OpClip
	OpEOClip
	OpBeginText
	OpEndText
	OpSetCharSpacing
	OpSetWordSpacing
	OpSetHScale
	OpSetLeading
	OpSetFont
	OpSetTextRenderingMode
	OpSetTextRise
	OpMoveText
	OpSetLeadingMoveText
	OpSetTextMatrix
	OpNextLine
	OpShowText
	OpShowSpacedText
	OpNextLineShowText
	OpNextLineSetSpacingShowText
	OpSetCharWidth
	OpSetCharWidthAndBounds
	OpSetStrokeColorSpace
	OpSetFillColorSpace
	OpSetStrokeColor
	OpSetStrokeColorN
	OpSetFillColor
	OpSetFillColorN
	OpSetStrokeGray
	OpSetFillGray
	OpSetStrokeRGBColor
	OpSetFillRGBColor
	OpSetStrokeCMYKColor
	OpSetFillCMYKColor
	OpShadingFill
	OpBeginInlineImage
	OpBeginImageData
	OpEndInlineImage
	OpPaintXObject
	OpMarkPoint
	OpMarkPointProps
	OpBeginMarkedContent
	OpBeginMarkedContentProps
	OpEndMarkedContent
	OpBeginCompat
	OpEndCompat
	OpPaintFormXObjectBegin
	OpPaintFormXObjectEnd
	OpBeginGroup
	OpEndGroup
)

// 78, 79 and 82 are retired.
const (
	OpBeginAnnotation OpCode = iota + 80
	OpEndAnnotation
	_
	OpPaintImageMaskXObject
	OpPaintImageMaskXObjectGroup
	OpPaintImageXObject
	OpPaintInlineImageXObject
	OpPaintInlineImageXObjectGroup
	OpPaintImageXObjectRepeat
	OpPaintImageMaskXObjectRepeat
	OpPaintSolidColorImageMask
	OpConstructPath
	OpSetStrokeTransparent
	OpSetFillTransparent
)

var opNames = map[OpCode]string{
	OpDependency:                   "dependency",
	OpSetLineWidth:                 "setLineWidth",
	OpSetLineCap:                   "setLineCap",
	OpSetLineJoin:                  "setLineJoin",
	OpSetMiterLimit:                "setMiterLimit",
	OpSetDash:                      "setDash",
	OpSetRenderingIntent:           "setRenderingIntent",
	OpSetFlatness:                  "setFlatness",
	OpSetGState:                    "setGState",
	OpSave:                         "save",
	OpRestore:                      "restore",
	OpTransform:                    "transform",
	OpMoveTo:                       "moveTo",
	OpLineTo:                       "lineTo",
	OpCurveTo:                      "curveTo",
	OpCurveTo2:                     "curveTo2",
	OpCurveTo3:                     "curveTo3",
	OpClosePath:                    "closePath",
	OpRectangle:                    "rectangle",
	OpStroke:                       "stroke",
	OpCloseStroke:                  "closeStroke",
	OpFill:                         "fill",
	OpEOFill:                       "eoFill",
	OpFillStroke:                   "fillStroke",
	OpEOFillStroke:                 "eoFillStroke",
	OpCloseFillStroke:              "closeFillStroke",
	OpCloseEOFillStroke:            "closeEOFillStroke",
	OpEndPath:                      "endPath",
	OpClip:                         "clip",
	OpEOClip:                       "eoClip",
	OpBeginText:                    "beginText",
	OpEndText:                      "endText",
	OpSetCharSpacing:               "setCharSpacing",
	OpSetWordSpacing:               "setWordSpacing",
	OpSetHScale:                    "setHScale",
	OpSetLeading:                   "setLeading",
	OpSetFont:                      "setFont",
	OpSetTextRenderingMode:         "setTextRenderingMode",
	OpSetTextRise:                  "setTextRise",
	OpMoveText:                     "moveText",
	OpSetLeadingMoveText:           "setLeadingMoveText",
	OpSetTextMatrix:                "setTextMatrix",
	OpNextLine:                     "nextLine",
	OpShowText:                     "showText",
	OpShowSpacedText:               "showSpacedText",
	OpNextLineShowText:             "nextLineShowText",
	OpNextLineSetSpacingShowText:   "nextLineSetSpacingShowText",
	OpSetCharWidth:                 "setCharWidth",
	OpSetCharWidthAndBounds:        "setCharWidthAndBounds",
	OpSetStrokeColorSpace:          "setStrokeColorSpace",
	OpSetFillColorSpace:            "setFillColorSpace",
	OpSetStrokeColor:               "setStrokeColor",
	OpSetStrokeColorN:              "setStrokeColorN",
	OpSetFillColor:                 "setFillColor",
	OpSetFillColorN:                "setFillColorN",
	OpSetStrokeGray:                "setStrokeGray",
	OpSetFillGray:                  "setFillGray",
	OpSetStrokeRGBColor:            "setStrokeRGBColor",
	OpSetFillRGBColor:              "setFillRGBColor",
	OpSetStrokeCMYKColor:           "setStrokeCMYKColor",
	OpSetFillCMYKColor:             "setFillCMYKColor",
	OpShadingFill:                  "shadingFill",
	OpBeginInlineImage:             "beginInlineImage",
	OpBeginImageData:               "beginImageData",
	OpEndInlineImage:               "endInlineImage",
	OpPaintXObject:                 "paintXObject",
	OpMarkPoint:                    "markPoint",
	OpMarkPointProps:               "markPointProps",
	OpBeginMarkedContent:           "beginMarkedContent",
	OpBeginMarkedContentProps:      "beginMarkedContentProps",
	OpEndMarkedContent:             "endMarkedContent",
	OpBeginCompat:                  "beginCompat",
	OpEndCompat:                    "endCompat",
	OpPaintFormXObjectBegin:        "paintFormXObjectBegin",
	OpPaintFormXObjectEnd:          "paintFormXObjectEnd",
	OpBeginGroup:                   "beginGroup",
	OpEndGroup:                     "endGroup",
	OpBeginAnnotation:              "beginAnnotation",
	OpEndAnnotation:                "endAnnotation",
	OpPaintImageMaskXObject:        "paintImageMaskXObject",
	OpPaintImageMaskXObjectGroup:   "paintImageMaskXObjectGroup",
	OpPaintImageXObject:            "paintImageXObject",
	OpPaintInlineImageXObject:      "paintInlineImageXObject",
	OpPaintInlineImageXObjectGroup: "paintInlineImageXObjectGroup",
	OpPaintImageXObjectRepeat:      "paintImageXObjectRepeat",
	OpPaintImageMaskXObjectRepeat:  "paintImageMaskXObjectRepeat",
	OpPaintSolidColorImageMask:     "paintSolidColorImageMask",
	OpConstructPath:                "constructPath",
	OpSetStrokeTransparent:         "setStrokeTransparent",
	OpSetFillTransparent:           "setFillTransparent",
}

func (op OpCode) String() string {
	if s, ok := opNames[op]; ok {
		return s
	}
	return "OpCode(" + strconv.Itoa(int(op)) + ")"
}

// Valid reports whether op is a known operation.
func (op OpCode) Valid() bool {
	_, ok := opNames[op]
	return ok
}

// IsPath reports whether op is one of the path construction operations
// that are merged into constructPath.
func (op OpCode) IsPath() bool {
	switch op {
	case OpMoveTo, OpLineTo, OpCurveTo, OpCurveTo2, OpCurveTo3, OpClosePath, OpRectangle:
		return true
	}
	return false
}
