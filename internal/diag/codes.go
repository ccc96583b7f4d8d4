package diag

import (
	"fmt"
)

type Code uint16

// Коды сгруппированы по диапазонам: 1-999 нормализация, 4000-4999 ввод-вывод,
// 6000-6999 наблюдаемость. ID печатает смещение внутри диапазона.
const (
	UnknownCode Code = 0

	// Normalization pipeline
	NorContinuationDangling Code = 1 // NOR0001, §continuation merging
	NorProcUnclosed         Code = 2
	NorProcEndMismatch      Code = 3
	NorProcUnexpectedEnd    Code = 4
	NorInterfaceUnclosed    Code = 5

	// Classification warnings
	NorStatementFunction Code = 101 // NOR0101

	// File IO
	IOLoadFailed  Code = 4001
	IOWriteFailed Code = 4002

	// Observability
	ObsTimings Code = 6001
)

var codeDescription = map[Code]string{
	UnknownCode:             "unknown failure",
	NorContinuationDangling: "dangling continuation marker",
	NorProcUnclosed:         "procedure is never closed",
	NorProcEndMismatch:      "end does not match the open procedure",
	NorProcUnexpectedEnd:    "end with no open procedure",
	NorInterfaceUnclosed:    "interface block is never closed",
	NorStatementFunction:    "declaration-like statement function",
	IOLoadFailed:            "cannot read source file",
	IOWriteFailed:           "cannot write normalized file",
	ObsTimings:              "phase timings",
}

// ID returns the stable printable identifier, e.g. NOR0003 or IO0001.
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1 && ic < 1000:
		return fmt.Sprintf("NOR%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic-4000)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic-6000)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
