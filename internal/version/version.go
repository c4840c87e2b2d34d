package version

import "fmt"

type Version struct {
	MajorNumber int64
	MinorNumber int64
	PatchNumber int64
}

// String generates a human readable version
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.MajorNumber, v.MinorNumber, v.PatchNumber)
}

var AppVersion = Version{
	MajorNumber: 0,
	MinorNumber: 1,
	PatchNumber: 0,
}
