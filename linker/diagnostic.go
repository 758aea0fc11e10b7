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

package linker

import (
	"fmt"

	"github.com/xfflink/xfflink/logger"
)

// Diagnostic is a non-fatal problem found during a stage of the link.
type Diagnostic struct {
	// the log tag of the stage
	Stage string

	// name of the module, image or file the problem relates to
	Module string

	Err error
}

func (d Diagnostic) String() string {
	if d.Module == "" {
		return fmt.Sprintf("%s: %v", d.Stage, d.Err)
	}
	return fmt.Sprintf("%s: %s: %v", d.Stage, d.Module, d.Err)
}

// newDiagnostic logs the error under the stage tag and returns it as a
// Diagnostic.
func newDiagnostic(stage string, module string, err error) Diagnostic {
	d := Diagnostic{Stage: stage, Module: module, Err: err}
	if module == "" {
		logger.Log(logger.Allow, stage, err.Error())
	} else {
		logger.Logf(logger.Allow, stage, "%s: %v", module, err)
	}
	return d
}
