package analysis_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/require"
)

// fpdfDocument builds a PDF of blank pages of w x h millimetres.
func fpdfDocument(t *testing.T, pages int, w, h float64) []byte {
	t.Helper()
	doc := fpdf.NewCustom(&fpdf.InitType{OrientationStr: "P", UnitStr: "mm", Size: fpdf.SizeType{Wd: w, Ht: h}})
	for i := 0; i < pages; i++ {
		doc.AddPage()
	}
	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

type pdfObject struct {
	num  int
	body string
}

// buildPDF writes objects in the given order with a matching xref table.
func buildPDF(root int, objects []pdfObject) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make(map[int]int, len(objects))
	maxNum := 0
	for _, o := range objects {
		offsets[o.num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", o.num, o.body)
		if o.num > maxNum {
			maxNum = o.num
		}
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", maxNum+1)
	buf.WriteString("0000000000 65535 f \n")
	for n := 1; n <= maxNum; n++ {
		if off, ok := offsets[n]; ok {
			fmt.Fprintf(&buf, "%010d 00000 n \n", off)
		} else {
			buf.WriteString("0000000000 65535 f \n")
		}
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n", maxNum+1, root, xref)
	return buf.Bytes()
}
