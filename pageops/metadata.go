package pageops

import (
	"fmt"
	"time"

	"github.com/benedoc-inc/pdfkit/pdfval"
)

// Metadata is the document-info fields spec §4.9 names.
type Metadata struct {
	Title    string
	Author   string
	Subject  string
	Keywords string
}

const producerName = "pdfkit"

// SetMetadata creates or updates doc's /Info indirect object with the
// given fields plus /Creator and /Producer, and stamps /ModDate (and
// /CreationDate, if not already set) in PDF date format
// "(D:YYYYMMDDHHmmSS)", per spec §4.9. now is passed in rather than
// read from the clock, since every other timestamp in this toolkit's
// callers is caller-supplied (the core never calls time.Now itself).
func SetMetadata(doc *pdfval.Document, meta Metadata, now time.Time) {
	infoNum, info := infoDict(doc)

	info.Set(pdfval.Name("Title"), pdfval.NewString(meta.Title))
	info.Set(pdfval.Name("Author"), pdfval.NewString(meta.Author))
	info.Set(pdfval.Name("Subject"), pdfval.NewString(meta.Subject))
	info.Set(pdfval.Name("Keywords"), pdfval.NewString(meta.Keywords))
	info.Set(pdfval.Name("Creator"), pdfval.NewString(producerName))
	info.Set(pdfval.Name("Producer"), pdfval.NewString(producerName))

	stamp := pdfDate(now)
	if _, hasCreation := info.Get(pdfval.Name("CreationDate")); !hasCreation {
		info.Set(pdfval.Name("CreationDate"), pdfval.NewString(stamp))
	}
	info.Set(pdfval.Name("ModDate"), pdfval.NewString(stamp))

	doc.Trailer.Set(pdfval.Name("Info"), pdfval.Reference{Num: infoNum})
}

// infoDict returns doc's existing /Info dictionary and object number,
// or allocates a new one.
func infoDict(doc *pdfval.Document) (int, *pdfval.Dict) {
	if v, ok := doc.Trailer.Get(pdfval.Name("Info")); ok {
		if ref, ok := v.(pdfval.Reference); ok {
			if d, ok := doc.Objects[ref.Num].(*pdfval.Dict); ok {
				return ref.Num, d
			}
		}
	}
	num := maxObjectNumber(doc) + 1
	d := pdfval.NewDict()
	doc.Objects[num] = d
	return num, d
}

// pdfDate formats t in the PDF date string convention: "D:YYYYMMDDHHmmSS".
func pdfDate(t time.Time) string {
	return fmt.Sprintf("D:%04d%02d%02d%02d%02d%02d",
		t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
}
