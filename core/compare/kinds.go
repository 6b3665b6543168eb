package compare

import "github.com/FocuswithJustin/redline/core/wml"

// kind is the role an element plays during atomization and reassembly.
type kind int

const (
	// kindLeaf elements become a single atom.
	kindLeaf kind = iota
	// kindText elements become one atom per character.
	kindText
	// kindParagraph elements are groups that end with a paragraph-mark atom.
	kindParagraph
	// kindBlock elements are groups: tables, rows, cells, text-box content.
	kindBlock
	// kindRun elements carry run properties around their content.
	kindRun
	// kindTransparent elements are recursed through and stay on the chain.
	kindTransparent
	// kindShape elements are leaves unless they hold text-box content.
	kindShape
	// kindProperty elements are carried through untouched.
	kindProperty
	// kindIgnorable elements are removed before comparison.
	kindIgnorable
	// kindUnsupported elements make the comparison fail.
	kindUnsupported
)

// descriptor is the entry of the dispatch table.
type descriptor struct {
	kind      kind
	group     UnitKind
	wordBreak bool
}

var elementKinds = map[string]descriptor{
	wml.P:           {kind: kindParagraph, group: UnitParagraph},
	wml.Tbl:         {kind: kindBlock, group: UnitTable},
	wml.Tr:          {kind: kindBlock, group: UnitRow},
	wml.Tc:          {kind: kindBlock, group: UnitCell},
	wml.TxbxContent: {kind: kindBlock, group: UnitTextbox},
	wml.R:           {kind: kindRun},

	wml.T:       {kind: kindText},
	wml.DelText: {kind: kindText},

	wml.InstrText:         {kind: kindLeaf, wordBreak: true},
	wml.DelInstr:          {kind: kindLeaf, wordBreak: true},
	wml.Tab:               {kind: kindLeaf, wordBreak: true},
	wml.Br:                {kind: kindLeaf, wordBreak: true},
	wml.Cr:                {kind: kindLeaf, wordBreak: true},
	wml.FldChar:           {kind: kindLeaf, wordBreak: true},
	wml.FootnoteReference: {kind: kindLeaf, wordBreak: true},
	wml.EndnoteReference:  {kind: kindLeaf, wordBreak: true},
	wml.FootnoteRef:       {kind: kindLeaf, wordBreak: true},
	wml.EndnoteRef:        {kind: kindLeaf, wordBreak: true},
	wml.Separator:         {kind: kindLeaf, wordBreak: true},
	wml.ContinuationSep:   {kind: kindLeaf, wordBreak: true},
	wml.OMath:             {kind: kindLeaf, wordBreak: true},
	wml.OMathPara:         {kind: kindLeaf, wordBreak: true},
	"w:sym":               {kind: kindLeaf, wordBreak: true},
	"w:ptab":              {kind: kindLeaf, wordBreak: true},
	"w:commentReference":  {kind: kindLeaf, wordBreak: true},
	"mc:AlternateContent": {kind: kindLeaf, wordBreak: true},
	"w:softHyphen":        {kind: kindLeaf},
	"w:noBreakHyphen":     {kind: kindLeaf},

	wml.Drawing: {kind: kindShape, wordBreak: true},
	wml.Pict:    {kind: kindShape, wordBreak: true},
	wml.Object:  {kind: kindShape, wordBreak: true},

	wml.PPr:         {kind: kindProperty},
	wml.RPr:         {kind: kindProperty},
	wml.TblPr:       {kind: kindProperty},
	wml.TblGrid:     {kind: kindProperty},
	wml.TrPr:        {kind: kindProperty},
	wml.TcPr:        {kind: kindProperty},
	wml.SdtPr:       {kind: kindProperty},
	wml.SdtEndPr:    {kind: kindProperty},
	wml.SectPr:      {kind: kindProperty},
	"w:tblPrEx":     {kind: kindProperty},
	"w:customXmlPr": {kind: kindProperty},

	wml.Sdt:        {kind: kindTransparent},
	wml.SdtContent: {kind: kindTransparent},
	wml.Hyperlink:  {kind: kindTransparent},
	wml.SmartTag:   {kind: kindTransparent},
	wml.Ins:        {kind: kindTransparent},
	wml.Del:        {kind: kindTransparent},
	wml.FldSimple:  {kind: kindTransparent},
	wml.CustomXML:  {kind: kindTransparent},
	"w:moveFrom":   {kind: kindTransparent},
	"w:moveTo":     {kind: kindTransparent},
	"w:dir":        {kind: kindTransparent},
	"w:bdo":        {kind: kindTransparent},

	"w:bookmarkStart":         {kind: kindIgnorable},
	"w:bookmarkEnd":           {kind: kindIgnorable},
	"w:proofErr":              {kind: kindIgnorable},
	"w:lastRenderedPageBreak": {kind: kindIgnorable},
	"w:permStart":             {kind: kindIgnorable},
	"w:permEnd":               {kind: kindIgnorable},
	"w:commentRangeStart":     {kind: kindIgnorable},
	"w:commentRangeEnd":       {kind: kindIgnorable},

	"w:altChunk":                    {kind: kindUnsupported},
	"w:subDoc":                      {kind: kindUnsupported},
	"w:contentPart":                 {kind: kindUnsupported},
	"w:moveFromRangeStart":          {kind: kindUnsupported},
	"w:moveFromRangeEnd":            {kind: kindUnsupported},
	"w:moveToRangeStart":            {kind: kindUnsupported},
	"w:moveToRangeEnd":              {kind: kindUnsupported},
	"w:customXmlMoveFromRangeStart": {kind: kindUnsupported},
	"w:customXmlMoveFromRangeEnd":   {kind: kindUnsupported},
	"w:customXmlMoveToRangeStart":   {kind: kindUnsupported},
	"w:customXmlMoveToRangeEnd":     {kind: kindUnsupported},
}

// kindOf looks el up in the dispatch table. Shapes resolve to transparent
// when they hold text-box content and to leaves otherwise; unknown elements
// are transparent when they contain document content.
func kindOf(el *wml.Element) descriptor {
	if d, ok := elementKinds[el.Name]; ok {
		if d.kind == kindShape && !el.Has(wml.TxbxContent) {
			d.kind = kindLeaf
		}
		return d
	}
	if el.Has(wml.P, wml.R, wml.Tbl, wml.TxbxContent) {
		return descriptor{kind: kindTransparent}
	}
	return descriptor{kind: kindLeaf, wordBreak: true}
}

func isGroup(el *wml.Element) bool {
	d, ok := elementKinds[el.Name]
	return ok && (d.kind == kindParagraph || d.kind == kindBlock)
}

func isTextName(name string) bool {
	return name == wml.T || name == wml.DelText
}

func isWordBreak(name string) bool {
	if name == wml.PPr {
		return true
	}
	d, ok := elementKinds[name]
	if !ok {
		return true
	}
	return d.wordBreak
}
