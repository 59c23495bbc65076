package evaluator

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"log/slog"
	"math"

	"golang.org/x/image/draw"

	"github.com/ScriptRock/pdfeval"
	"github.com/ScriptRock/pdfeval/colorspace"
	"github.com/ScriptRock/pdfeval/oplist"
)

// smallImageDimensions is the limit on width plus height below which
// inline images are embedded in the operator list.
const smallImageDimensions = 200

// ImageKind is the pixel layout of ImageData.
type ImageKind int

const (
	// ImageGrayscale1BPP holds one bit per pixel, rows padded to bytes.
	ImageGrayscale1BPP ImageKind = iota + 1
	ImageRGB24
	ImageRGBA32
)

// ImageData is a decoded image.
type ImageData struct {
	Width, Height int
	Kind          ImageKind
	Data          []byte
	Interpolate   bool
	// Ref is the image XObject the data was decoded from.
	Ref pdfeval.Ref
}

// MaskRef is the argument of paintImageMaskXObject for masks sent as a
// resource. Count tracks how often the operator list paints it.
type MaskRef struct {
	ID          string
	Width       int
	Height      int
	Interpolate bool
	Count       int
}

// cachedImage is what the image caches store: the operation painting an
// image that has been sent already.
type cachedImage struct {
	objID           string
	fn              oplist.OpCode
	args            []any
	optionalContent any
	hasMask         bool
}

func addCachedImageOps(ol *oplist.OperatorList, ci *cachedImage) {
	if ci.objID != "" {
		ol.AddDependency(ci.objID)
	}
	ol.AddImageOps(ci.fn, ci.args, ci.optionalContent, ci.hasMask)
	if ci.fn == oplist.OpPaintImageMaskXObject && len(ci.args) > 0 {
		if m, ok := ci.args[0].(*MaskRef); ok && m.Count > 0 {
			m.Count++
		}
	}
}

// paintXObject handles the Do operator.
func (e *Evaluator) paintXObject(ctx context.Context, c *opCall, arg pdfeval.Object) error {
	name, ok := arg.(pdfeval.Name)
	if !ok {
		return pdfeval.Errorf("XObject must be referred to by name")
	}
	if ci, ok := c.images.GetByName(name); ok {
		addCachedImageOps(c.ol, ci)
		return nil
	}

	raw, err := retry(ctx, e, func() (pdfeval.Object, error) {
		return resource(e.xref, c.resources, "XObject", name)
	})
	if err != nil {
		return err
	}
	if ref, ok := raw.(pdfeval.Ref); ok {
		if ci, ok := c.images.GetByRef(ref); ok {
			addCachedImageOps(c.ol, ci)
			return nil
		}
		if ci, ok := e.doc.images.GetData(ref, e.page); ok {
			addCachedImageOps(c.ol, ci)
			return nil
		}
	}

	xobj, err := retry(ctx, e, func() (*pdfeval.Stream, error) { return pdfeval.GetStream(e.xref, raw) })
	if err != nil {
		return err
	}
	if xobj == nil {
		return pdfeval.Errorf("XObject %s should be a stream", name)
	}
	subtype, err := xobj.Dict.Get("Subtype")
	if err != nil {
		return err
	}
	typ, ok := subtype.(pdfeval.Name)
	if !ok {
		return pdfeval.Errorf("XObject %s should have a Name subtype", name)
	}
	switch typ {
	case "Form":
		return e.buildFormXObject(ctx, c, xobj, nil)
	case "Image":
		return e.buildPaintImage(ctx, c, xobj, name, false)
	case "PS":
		e.log.Info("ignored XObject subtype PS")
		return nil
	}
	return pdfeval.Errorf("unhandled XObject subtype %s", typ)
}

// buildPaintImage emits the operations painting image. Images with a
// cacheKey, the name of the XObject resource, are cached for the call and
// possibly for the document.
func (e *Evaluator) buildPaintImage(ctx context.Context, c *opCall, img *pdfeval.Stream, cacheKey pdfeval.Name, inline bool) error {
	dict := img.Dict
	ref := img.Ref()
	w, errW := pdfeval.GetInt(e.xref, lookup(dict, "Width", "W"))
	h, errH := pdfeval.GetInt(e.xref, lookup(dict, "Height", "H"))
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		e.log.Warn("image dimensions are missing, or not numbers")
		return nil
	}
	if e.opts.MaxImageSize >= 0 && w*h > e.opts.MaxImageSize {
		err := pdfeval.Errorf("image exceeded maximum allowed size and was removed")
		if e.opts.IgnoreErrors {
			e.log.Warn(err.Error(), slog.Int("width", w), slog.Int("height", h))
			return nil
		}
		return err
	}

	var optionalContent any
	if dict.Has("OC") {
		oc, err := e.parseMarkedContentProps(ctx, c.resources, dict.GetRaw("OC"))
		if err != nil {
			return err
		}
		if oc != nil {
			optionalContent = oc
		}
	}

	cache := func(ci *cachedImage) {
		if cacheKey != "" {
			c.images.Set(cacheKey, ref, ci)
		}
	}

	if isMask, _ := pdfeval.GetBool(e.xref, lookup(dict, "ImageMask", "IM")); isMask {
		mask, single, err := e.decodeMask(img, w, h)
		if err != nil {
			return err
		}
		if e.parsingType3 {
			ci := &cachedImage{fn: oplist.OpPaintImageMaskXObject, args: []any{mask}, optionalContent: optionalContent}
			c.ol.AddImageOps(ci.fn, ci.args, optionalContent, false)
			cache(ci)
			return nil
		}
		if single {
			ci := &cachedImage{fn: oplist.OpPaintSolidColorImageMask, optionalContent: optionalContent}
			c.ol.AddImageOps(ci.fn, nil, optionalContent, false)
			cache(ci)
			return nil
		}
		objID := "mask_" + e.ids.NewObjID()
		c.ol.AddDependency(objID)
		if err := e.send(ctx, &Resource{Kind: ResourceMask, ID: objID, Data: mask}); err != nil {
			return err
		}
		ci := &cachedImage{
			objID:           objID,
			fn:              oplist.OpPaintImageMaskXObject,
			args:            []any{&MaskRef{ID: objID, Width: w, Height: h, Interpolate: mask.Interpolate, Count: 1}},
			optionalContent: optionalContent,
		}
		c.ol.AddImageOps(ci.fn, ci.args, optionalContent, false)
		cache(ci)
		return nil
	}

	hasMask := dict.Has("SMask") || dict.Has("Mask")
	if inline && w+h < smallImageDimensions && !hasMask {
		data, err := e.decodeImage(ctx, c, img, w, h)
		if err != nil {
			return pdfeval.Wrap(err, "unable to decode inline image")
		}
		c.ol.AddImageOps(oplist.OpPaintInlineImageXObject, []any{data}, optionalContent, false)
		return nil
	}

	cacheGlobally := false
	if !e.parsingType3 && cacheKey != "" && !ref.IsZero() {
		cacheGlobally = e.doc.images.ShouldCache(ref, e.page)
	}
	var shared *cachedImage
	if cacheGlobally {
		ci, release, err := e.claimGlobalImage(ctx, ref)
		if err != nil {
			return err
		}
		if ci != nil {
			addCachedImageOps(c.ol, ci)
			cache(ci)
			return nil
		}
		defer func() { release(shared) }()
	}

	objID := "img_" + e.ids.NewObjID()
	if e.parsingType3 {
		objID = e.ids.DocID() + "_type3_" + objID
	} else if cacheGlobally {
		objID = e.ids.DocID() + "_" + objID
	}

	c.ol.AddDependency(objID)
	args := []any{objID, float64(w), float64(h)}
	c.ol.AddImageOps(oplist.OpPaintImageXObject, args, optionalContent, hasMask)
	ci := &cachedImage{objID: objID, fn: oplist.OpPaintImageXObject, args: args, optionalContent: optionalContent, hasMask: hasMask}

	common := e.parsingType3 || cacheGlobally
	var data *ImageData
	if !(cacheGlobally && e.doc.images.HasDecodeFailed(ref)) {
		var err error
		data, err = e.decodeImage(ctx, c, img, w, h)
		switch {
		case ctx.Err() != nil || pdfeval.IsMissingData(err):
			return err
		case err != nil:
			e.log.Warn("unable to decode image", slog.String("id", objID), slog.Any("err", err))
			if !ref.IsZero() {
				e.doc.images.AddDecodeFailed(ref)
			}
			data = nil
		}
	}
	if data != nil {
		data.Ref = ref
	}
	if err := e.send(ctx, &Resource{Kind: ResourceImage, ID: objID, Common: common, Data: data}); err != nil {
		return err
	}

	cache(ci)
	if cacheGlobally {
		if err := e.doc.images.SetData(ref, ci); err != nil {
			return err
		}
		if data != nil {
			e.doc.images.AddByteSize(ref, len(data.Data))
		}
		shared = ci
	}
	return nil
}

// claimGlobalImage returns the image data shared for ref, waiting while
// another evaluator decodes it. When no data exists yet, the caller
// decodes the image itself and must call release with the result, or
// with nil when it gave up, which lets a waiting evaluator try instead.
func (e *Evaluator) claimGlobalImage(ctx context.Context, ref pdfeval.Ref) (*cachedImage, func(*cachedImage), error) {
	for {
		if ci, ok := e.doc.images.GetData(ref, e.page); ok {
			return ci, nil, nil
		}
		p, created := e.doc.imageLoads.GetOrCreate(ref)
		if created {
			release := func(ci *cachedImage) {
				e.doc.imageLoads.Delete(ref)
				p.Resolve(ci, nil)
			}
			if ci, ok := e.doc.images.GetData(ref, e.page); ok {
				release(ci)
				return ci, nil, nil
			}
			return nil, release, nil
		}
		ci, err := p.Wait(ctx)
		if err != nil {
			return nil, nil, err
		}
		if ci != nil {
			return ci, nil, nil
		}
	}
}

func lookup(d *pdfeval.Dict, keys ...pdfeval.Name) pdfeval.Object {
	for _, k := range keys {
		if v := d.GetRaw(k); v != nil {
			return v
		}
	}
	return nil
}

// decodeMask reads a stencil mask. It reports whether the mask is a single
// opaque pixel, which paints like a filled unit square.
func (e *Evaluator) decodeMask(img *pdfeval.Stream, w, h int) (*ImageData, bool, error) {
	data, err := img.Decode()
	if err != nil {
		return nil, false, err
	}
	stride := (w + 7) >> 3
	bits := make([]byte, stride*h)
	copy(bits, data)

	decode, _ := pdfeval.GetNumbers(e.xref, lookup(img.Dict, "Decode", "D"))
	inverse := len(decode) > 0 && decode[0] > 0
	interpolate, _ := pdfeval.GetBool(e.xref, lookup(img.Dict, "Interpolate", "I"))

	if w == 1 && h == 1 {
		set := len(data) == 0 || data[0]&0x80 != 0
		if inverse == set {
			return nil, true, nil
		}
	}
	if inverse {
		for i := range bits {
			bits[i] = ^bits[i]
		}
	}
	return &ImageData{Width: w, Height: h, Kind: ImageGrayscale1BPP, Data: bits, Interpolate: interpolate}, false, nil
}

// decodeImage converts an image XObject to RGB, or to RGBA when it has a
// soft mask, a stencil mask or a color key mask.
func (e *Evaluator) decodeImage(ctx context.Context, c *opCall, img *pdfeval.Stream, w, h int) (*ImageData, error) {
	dict := img.Dict
	interpolate, _ := pdfeval.GetBool(e.xref, lookup(dict, "Interpolate", "I"))
	out := &ImageData{Width: w, Height: h, Kind: ImageRGB24, Data: make([]byte, 3*w*h), Interpolate: interpolate}

	data, filter, err := img.DecodeUntilImage()
	if err != nil {
		return nil, err
	}
	var colorKey []float64
	var raw [][]uint16
	switch {
	case filter != nil && filter.Name == "DCTDecode":
		if err := decodeJPEG(data, w, h, out.Data); err != nil {
			return nil, err
		}
	case filter != nil:
		return nil, &pdfeval.UnsupportedError{Feature: "image filter " + string(filter.Name)}
	default:
		csObj := lookup(dict, "ColorSpace", "CS")
		if csObj == nil {
			return nil, pdfeval.Errorf("image without ColorSpace")
		}
		cs, err := e.colorSpaceOperand(ctx, c, csObj)
		if err != nil {
			return nil, err
		}
		bpc, err := pdfeval.GetInt(e.xref, lookup(dict, "BitsPerComponent", "BPC"))
		if err != nil || !validBPC(bpc) {
			return nil, pdfeval.Errorf("invalid image BitsPerComponent %d", bpc)
		}
		decode, _ := pdfeval.GetNumbers(e.xref, lookup(dict, "Decode", "D"))
		raw = unpackSamples(data, w, h, cs.NumComps(), bpc)
		fillRGB(out.Data, raw, cs, bpc, decode)
		if a, err := pdfeval.GetNumbers(e.xref, dict.GetRaw("Mask")); err == nil && len(a) == 2*cs.NumComps() {
			colorKey = a
		}
	}

	alpha, err := e.alpha(dict, w, h, raw, colorKey)
	if err != nil {
		return nil, err
	}
	if alpha == nil {
		return out, nil
	}
	rgba := make([]byte, 4*w*h)
	for i := 0; i < w*h; i++ {
		copy(rgba[4*i:4*i+3], out.Data[3*i:3*i+3])
		rgba[4*i+3] = alpha[i]
	}
	out.Kind, out.Data = ImageRGBA32, rgba
	return out, nil
}

func validBPC(bpc int) bool {
	switch bpc {
	case 1, 2, 4, 8, 16:
		return true
	}
	return false
}

// unpackSamples splits image data into pixels of n samples each. Rows
// start on byte boundaries; missing data reads as zero.
func unpackSamples(data []byte, w, h, n, bpc int) [][]uint16 {
	stride := (w*n*bpc + 7) / 8
	px := make([][]uint16, w*h)
	mask := uint32(1)<<bpc - 1
	for y := 0; y < h; y++ {
		row := data[min(len(data), y*stride):min(len(data), (y+1)*stride)]
		bit := 0
		for x := 0; x < w; x++ {
			s := make([]uint16, n)
			for k := range s {
				var v uint32
				if bpc == 16 {
					if i := bit / 8; i+1 < len(row) {
						v = uint32(row[i])<<8 | uint32(row[i+1])
					}
				} else if i := bit / 8; i < len(row) {
					shift := 8 - bpc - bit%8
					v = uint32(row[i]) >> shift & mask
				}
				s[k] = uint16(v)
				bit += bpc
			}
			px[y*w+x] = s
		}
	}
	return px
}

// fillRGB maps raw samples through the decode array and converts them.
// Without a decode array samples span the range of the color space; for
// Indexed spaces they are the palette index.
func fillRGB(dst []byte, raw [][]uint16, cs colorspace.ColorSpace, bpc int, decode []float64) {
	n := cs.NumComps()
	maxVal := float64(uint32(1)<<bpc - 1)
	if len(decode) != 2*n {
		decode = colorspace.Range(cs)
		if _, ok := cs.(*colorspace.Indexed); ok {
			decode = []float64{0, maxVal}
		}
	}
	comps := make([]float64, n)
	for i, s := range raw {
		for k := range comps {
			comps[k] = decode[2*k] + float64(s[k])*(decode[2*k+1]-decode[2*k])/maxVal
		}
		if _, ok := cs.(*colorspace.Indexed); ok {
			comps[0] = math.Round(comps[0])
		}
		rgb := cs.RGB(comps)
		copy(dst[3*i:3*i+3], rgb[:])
	}
}

func decodeJPEG(data []byte, w, h int, dst []byte) error {
	m, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return pdfeval.Wrap(err, "cannot decode DCT image")
	}
	src := image.Image(m)
	if b := m.Bounds(); b.Dx() != w || b.Dy() != h {
		scaled := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), m, b, draw.Src, nil)
		src = scaled
	}
	b := src.Bounds()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.RGBA)
			i := 3 * (y*w + x)
			dst[i], dst[i+1], dst[i+2] = c.R, c.G, c.B
		}
	}
	return nil
}

// alpha returns the alpha channel of an image from its SMask, its
// stencil Mask or its color key Mask, or nil for opaque images.
func (e *Evaluator) alpha(dict *pdfeval.Dict, w, h int, raw [][]uint16, colorKey []float64) ([]byte, error) {
	if smask, err := pdfeval.GetStream(e.xref, dict.GetRaw("SMask")); err != nil {
		return nil, err
	} else if smask != nil {
		return e.maskAlpha(smask, w, h, false)
	}
	if mask, err := pdfeval.Resolve(e.xref, dict.GetRaw("Mask")); err != nil {
		return nil, err
	} else if s, ok := mask.(*pdfeval.Stream); ok {
		return e.maskAlpha(s, w, h, true)
	}
	if colorKey == nil || raw == nil {
		return nil, nil
	}
	a := make([]byte, w*h)
	for i, s := range raw {
		a[i] = 0
		for k, v := range s {
			if float64(v) < colorKey[2*k] || float64(v) > colorKey[2*k+1] {
				a[i] = 255
				break
			}
		}
	}
	return a, nil
}

// maskAlpha decodes a soft mask, or a stencil mask when stencil is set,
// to one alpha byte per pixel of a w×h image.
func (e *Evaluator) maskAlpha(s *pdfeval.Stream, w, h int, stencil bool) ([]byte, error) {
	mw, err := pdfeval.GetInt(e.xref, s.Dict.GetRaw("Width"))
	if err != nil {
		return nil, err
	}
	mh, err := pdfeval.GetInt(e.xref, s.Dict.GetRaw("Height"))
	if err != nil {
		return nil, err
	}
	if mw <= 0 || mh <= 0 {
		return nil, pdfeval.Errorf("invalid mask dimensions %dx%d", mw, mh)
	}
	data, err := s.Decode()
	if err != nil {
		return nil, err
	}
	bpc := 1
	if !stencil {
		if bpc, err = pdfeval.GetInt(e.xref, s.Dict.GetRaw("BitsPerComponent")); err != nil || !validBPC(bpc) {
			return nil, pdfeval.Errorf("invalid mask BitsPerComponent %d", bpc)
		}
	}
	decode, _ := pdfeval.GetNumbers(e.xref, s.Dict.GetRaw("Decode"))
	if len(decode) != 2 {
		decode = []float64{0, 1}
	}

	maxVal := float64(uint32(1)<<bpc - 1)
	gray := image.NewGray(image.Rect(0, 0, mw, mh))
	for i, px := range unpackSamples(data, mw, mh, 1, bpc) {
		v := decode[0] + float64(px[0])*(decode[1]-decode[0])/maxVal
		if stencil {
			// A stencil sample of 1 masks the image out.
			v = 1 - v
		}
		gray.Pix[i] = byte(math.Round(max(0, min(1, v)) * 255))
	}
	if mw == w && mh == h {
		return gray.Pix, nil
	}
	scaled := image.NewGray(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), gray, gray.Bounds(), draw.Src, nil)
	return scaled.Pix, nil
}
