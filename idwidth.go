package meshskin

import (
	"fmt"

	skinerrors "github.com/tamirms/meshskin/errors"
	intbits "github.com/tamirms/meshskin/internal/bits"
)

// chooseIDWidth resolves IDWidthAuto once the output sizes are known.
// 32-bit ids are used when the total connectivity, the cell count plus one
// and the point count all fit in an int32. A forced IDWidth32 that cannot
// hold them is an error.
func chooseIDWidth(requested IDWidth, conn, cells, points int64) (IDWidth, error) {
	fits := intbits.FitsInt32(conn) && intbits.FitsInt32(cells+1) && intbits.FitsInt32(points)
	switch requested {
	case IDWidth64:
		return IDWidth64, nil
	case IDWidth32:
		if !fits {
			return 0, fmt.Errorf("%w: 32-bit ids cannot hold %d connectivity entries, %d cells, %d points",
				skinerrors.ErrInvalidOption, conn, cells, points)
		}
		return IDWidth32, nil
	}
	if fits {
		return IDWidth32, nil
	}
	return IDWidth64, nil
}
