package codec

import "fmt"

// TableLengthMismatchError reports an encode that would change the size of a
// table's byte span. It always indicates a codec defect.
type TableLengthMismatchError struct {
	Table string
	Want  int
	Got   int
}

func (e *TableLengthMismatchError) Error() string {
	return fmt.Sprintf("encoding %s produced %d bytes, want %d", e.Table, e.Got, e.Want)
}
