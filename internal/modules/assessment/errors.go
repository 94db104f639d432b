package assessment

import (
	"fmt"

	"github.com/toeiclab/toeic-backend/internal/platform/apierr"
)

// ErrInvalidInput marks boundary precondition violations (empty answer sets,
// empty item lists, unparseable parts). It wraps apierr.ErrInvalidArgument.
var ErrInvalidInput = fmt.Errorf("assessment: %w", apierr.ErrInvalidArgument)
