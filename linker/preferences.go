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

	"github.com/xfflink/xfflink/curated"
	"github.com/xfflink/xfflink/discovery"
	"github.com/xfflink/xfflink/logger"
	"github.com/xfflink/xfflink/paths"
	"github.com/xfflink/xfflink/prefs"
	"github.com/xfflink/xfflink/splits"
)

// DefaultPrefsFile is the name of the preferences file in the resource
// directory.
const DefaultPrefsFile = "preferences"

// default values for the linker preferences.
const (
	defaultDiscovery  = false
	defaultScanWindow = discovery.DefaultWindow
	defaultAlignment  = 4
)

// Options for a single call to Link().
type Options struct {
	// discover relocations by scanning code sections
	Discover   bool
	ScanWindow int

	// alignment of the start of each module copy in the merged image. the
	// end of every copy is padded to 4 bytes so the default of 4 leaves the
	// copies of a section contiguous
	Alignment uint32

	// split list for the fixed image. entries become discovery targets and
	// can satisfy external references
	ImageSplits []splits.Split

	// permission for logging every individual relocation and discovery
	// match. nil is the same as logger.Verbosity(false)
	Detail logger.Permission
}

// DefaultOptions returns the options used when there are no preferences.
func DefaultOptions() Options {
	return Options{
		Discover:   defaultDiscovery,
		ScanWindow: defaultScanWindow,
		Alignment:  defaultAlignment,
	}
}

func (o Options) alignment() uint32 {
	if o.Alignment < defaultAlignment {
		return defaultAlignment
	}
	return o.Alignment
}

// Preferences for the linker. The preferences are stored on disk and can be
// overridden with the command line stack in the prefs package.
type Preferences struct {
	dsk *prefs.Disk

	Discovery  prefs.Bool
	ScanWindow prefs.Int
	Alignment  prefs.Int
}

func (p *Preferences) String() string {
	return fmt.Sprintf("linker.discovery=%s linker.scanwindow=%s linker.alignment=%s",
		p.Discovery.String(), p.ScanWindow.String(), p.Alignment.String())
}

// NewPreferences is the preferred method of initialisation for the
// Preferences type. An empty path means the default preferences file in the
// resource directory.
func NewPreferences(pth string) (*Preferences, error) {
	p := &Preferences{}
	p.SetDefaults()

	p.ScanWindow.SetHookPre(func(v prefs.Value) error {
		if v.(int) < 0 {
			return curated.Errorf("linker: scan window cannot be negative")
		}
		return nil
	})
	p.Alignment.SetHookPre(func(v prefs.Value) error {
		a := v.(int)
		if a <= 0 || a&(a-1) != 0 {
			return curated.Errorf("linker: alignment must be a power of two")
		}
		return nil
	})

	if pth == "" {
		pth = paths.ResourcePath("", DefaultPrefsFile)
	}

	var err error
	p.dsk, err = prefs.NewDisk(pth)
	if err != nil {
		return nil, err
	}

	err = p.dsk.Add("linker.discovery", &p.Discovery)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("linker.scanwindow", &p.ScanWindow)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("linker.alignment", &p.Alignment)
	if err != nil {
		return nil, err
	}

	err = p.dsk.Load()
	if err != nil {
		return nil, err
	}

	return p, nil
}

// SetDefaults reverts all preferences to their default values.
func (p *Preferences) SetDefaults() {
	p.Discovery.Set(defaultDiscovery)
	p.ScanWindow.Set(defaultScanWindow)
	p.Alignment.Set(defaultAlignment)
}

// Load preferences from disk.
func (p *Preferences) Load() error {
	return p.dsk.Load()
}

// Save current preferences to disk.
func (p *Preferences) Save() error {
	return p.dsk.Save()
}

// Options returns link options from the current preference values.
func (p *Preferences) Options() Options {
	return Options{
		Discover:   p.Discovery.Get().(bool),
		ScanWindow: p.ScanWindow.Get().(int),
		Alignment:  uint32(p.Alignment.Get().(int)),
	}
}
