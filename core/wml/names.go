package wml

// WordprocessingML element names used by the engine.
const (
	Document    = "w:document"
	Body        = "w:body"
	P           = "w:p"
	PPr         = "w:pPr"
	R           = "w:r"
	RPr         = "w:rPr"
	T           = "w:t"
	DelText     = "w:delText"
	InstrText   = "w:instrText"
	DelInstr    = "w:delInstrText"
	Tab         = "w:tab"
	Br          = "w:br"
	Cr          = "w:cr"
	Tbl         = "w:tbl"
	TblPr       = "w:tblPr"
	TblGrid     = "w:tblGrid"
	GridCol     = "w:gridCol"
	Tr          = "w:tr"
	TrPr        = "w:trPr"
	Tc          = "w:tc"
	TcPr        = "w:tcPr"
	GridSpan    = "w:gridSpan"
	VMerge      = "w:vMerge"
	HMerge      = "w:hMerge"
	Shd         = "w:shd"
	TblStyle    = "w:tblStyle"
	TblW        = "w:tblW"
	B           = "w:b"
	Ins         = "w:ins"
	Del         = "w:del"
	SectPr      = "w:sectPr"
	Sdt         = "w:sdt"
	SdtPr       = "w:sdtPr"
	SdtEndPr    = "w:sdtEndPr"
	SdtContent  = "w:sdtContent"
	Hyperlink   = "w:hyperlink"
	SmartTag    = "w:smartTag"
	FldSimple   = "w:fldSimple"
	FldChar     = "w:fldChar"
	CustomXML   = "w:customXml"
	Drawing     = "w:drawing"
	Pict        = "w:pict"
	Object      = "w:object"
	TxbxContent = "w:txbxContent"

	Footnotes         = "w:footnotes"
	Footnote          = "w:footnote"
	FootnoteReference = "w:footnoteReference"
	FootnoteRef       = "w:footnoteRef"
	Endnotes          = "w:endnotes"
	Endnote           = "w:endnote"
	EndnoteReference  = "w:endnoteReference"
	EndnoteRef        = "w:endnoteRef"
	Separator         = "w:separator"
	ContinuationSep   = "w:continuationSeparator"

	OMath     = "m:oMath"
	OMathPara = "m:oMathPara"

	DocPr = "wp:docPr"
)

// Attribute names.
const (
	AttrVal    = "w:val"
	AttrID     = "w:id"
	AttrType   = "w:type"
	AttrAuthor = "w:author"
	AttrDate   = "w:date"
	AttrFill   = "w:fill"
	AttrColor  = "w:color"
	AttrW      = "w:w"
	AttrSpace  = "xml:space"
)

// Relationship-bearing attributes; their values are relationship ids of the
// owning part.
var RelAttrs = []string{"r:id", "r:embed", "r:link", "r:pict", "r:href", "r:dm", "r:lo", "r:qs", "r:cs"}

// Namespace URIs written on generated roots.
const (
	NSW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	NSR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	NSM   = "http://schemas.openxmlformats.org/officeDocument/2006/math"
	NSWP  = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	NSRel = "http://schemas.openxmlformats.org/package/2006/relationships"
)
