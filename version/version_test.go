// This file is part of xfflink.
//
// xfflink is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// xfflink is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with xfflink.  If not, see <https://www.gnu.org/licenses/>.

package version

import (
	"strings"
	"testing"

	"github.com/xfflink/xfflink/test"
)

func TestNumberedRelease(t *testing.T) {
	v, _ := fromBuildInfo("v1.2.3")
	test.ExpectEquality(t, v, "v1.2.3")

	v, rev := fromBuildInfo("")
	test.ExpectInequality(t, v, "")
	test.ExpectInequality(t, rev, "")
}

func TestString(t *testing.T) {
	test.ExpectSuccess(t, strings.HasPrefix(String(), ApplicationName+" "))

	_, _, release := Version()
	test.ExpectEquality(t, release, false)
}
