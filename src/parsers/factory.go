package parsers

import (
	"fmt"

	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/parsers/commsec"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/parsers/generic"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/parsers/selfwealth"
)

// GetFormat returns the broker template for the given source identifier.
func GetFormat(source string) (Format, error) {
	switch source {
	case "generic":
		return generic.NewFormat(), nil
	case "selfwealth":
		return selfwealth.NewFormat(), nil
	case "commsec":
		return commsec.NewFormat(), nil
	default:
		return nil, fmt.Errorf("no csv format available for source: %s", source)
	}
}
