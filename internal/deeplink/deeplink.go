// Package deeplink parses encoded navigation strings and drives the widget
// to the state they name. Deep links arrive from outside the normal
// navigation flow (home screen quick actions, help shortcuts) and may fire
// at any time, including while the widget is collapsed.
package deeplink

import (
	"errors"
	"fmt"
	"strings"

	"github.com/solvyn/widgetcore/internal/domain"
)

// Separator joins the segments of an encoded deep link. The token is
// deliberately implausible in article ids and URLs.
const Separator = "->*cbhdeeplink^&^cbhdeeplink*->"

// URL-form targets.
const (
	TargetNew     = "new"
	TargetCurrent = "current"
)

// ErrMalformed reports an encoded string that fits neither link form.
var ErrMalformed = errors.New("deeplink: malformed encoded string")

// Parse decodes an encoded deep link. Strings with an http scheme are URL
// links split into (url, target); everything else must be a
// tab/view/element triple. The element id "null" (or empty) is the
// start-new sentinel for chat targets.
func Parse(encoded string) (domain.DeepLinkTarget, error) {
	parts := strings.Split(encoded, Separator)

	if strings.HasPrefix(encoded, "http") {
		if len(parts) < 2 {
			return domain.DeepLinkTarget{}, fmt.Errorf("%w: url form needs a target", ErrMalformed)
		}
		// Anything but an explicit "new" navigates the current context.
		return domain.DeepLinkTarget{
			URL:       parts[0],
			NewWindow: parts[1] == TargetNew,
		}, nil
	}

	if len(parts) != 3 {
		return domain.DeepLinkTarget{}, fmt.Errorf("%w: want 3 segments, got %d", ErrMalformed, len(parts))
	}

	elementID := parts[2]
	if elementID == "null" {
		elementID = ""
	}
	return domain.DeepLinkTarget{
		Tab:       domain.Tab(parts[0]),
		View:      domain.View(parts[1]),
		ElementID: elementID,
	}, nil
}

// Encode builds the internal triple form. An empty element id encodes the
// start-new sentinel.
func Encode(tab domain.Tab, view domain.View, elementID string) string {
	if elementID == "" {
		elementID = "null"
	}
	return string(tab) + Separator + string(view) + Separator + elementID
}

// EncodeURL builds the URL form.
func EncodeURL(u string, newWindow bool) string {
	target := TargetCurrent
	if newWindow {
		target = TargetNew
	}
	return u + Separator + target
}
