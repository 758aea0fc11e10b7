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

package paths_test

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/xfflink/xfflink/paths"
	"github.com/xfflink/xfflink/test"
)

func TestPaths(t *testing.T) {
	// run in a directory that contains the base resource path so that the
	// user's config directory is never used
	dir := t.TempDir()
	test.DemandSuccess(t, os.Mkdir(filepath.Join(dir, ".xfflink"), 0700))

	wd, err := os.Getwd()
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, os.Chdir(dir))
	defer os.Chdir(wd)

	test.ExpectEquality(t, paths.ResourcePath("foo/bar", "baz"), filepath.Join(".xfflink", "foo", "bar", "baz"))
	test.ExpectEquality(t, paths.ResourcePath("foo/bar", ""), filepath.Join(".xfflink", "foo", "bar"))
	test.ExpectEquality(t, paths.ResourcePath("", "baz"), filepath.Join(".xfflink", "baz"))
	test.ExpectEquality(t, paths.ResourcePath("", ""), ".xfflink")
}

func TestUniqueFilename(t *testing.T) {
	re := regexp.MustCompile(`^link_SLUS_123_\d{8}_\d{6}$`)
	test.ExpectSuccess(t, re.MatchString(paths.UniqueFilename("link", "/games/SLUS_123.elf")))

	re = regexp.MustCompile(`^link_\d{8}_\d{6}$`)
	test.ExpectSuccess(t, re.MatchString(paths.UniqueFilename("link", "")))
}
