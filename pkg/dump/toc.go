// SPDX-License-Identifier: Apache-2.0

package dump

import "io"

// TocEntry is one table-of-contents entry of a custom-format archive.
// Only the fields the obfuscation pipeline needs are kept; the rest of
// the entry's dependency/owner bookkeeping is opaque and is echoed back
// to the output verbatim, never re-encoded.
type TocEntry struct {
	DumpID    int64
	HadDumper bool
	TableOid  string
	Oid       string
	Tag       string
	Desc      string
	Section   int64
	DefN      string
	DropStmt  string
	CopyStmt  string
	Namespace string
	Tablespace string
	TableAM   string
	Owner     string
	WithOids  string
}

const isTableData = "TABLE DATA"

func parseTOC(r io.Reader, dio *BinaryIO, v version) ([]TocEntry, error) {
	count, err := dio.ReadInt(r)
	if err != nil {
		return nil, err
	}
	if count < 0 || count > 1_000_000 {
		return nil, InvalidCustomFormatError{Reason: "implausible TOC entry count"}
	}

	entries := make([]TocEntry, 0, count)
	for i := int64(0); i < count; i++ {
		entry, err := parseTocEntry(r, dio, v)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseTocEntry(r io.Reader, dio *BinaryIO, v version) (TocEntry, error) {
	var e TocEntry
	var err error

	dumpID, err := dio.ReadInt(r)
	if err != nil {
		return e, err
	}
	e.DumpID = dumpID

	hadDumper, err := dio.ReadInt(r)
	if err != nil {
		return e, err
	}
	e.HadDumper = hadDumper != 0

	if e.TableOid, err = dio.ReadString(r); err != nil {
		return e, err
	}
	if e.Oid, err = dio.ReadString(r); err != nil {
		return e, err
	}
	if e.Tag, err = dio.ReadString(r); err != nil {
		return e, err
	}
	if e.Desc, err = dio.ReadString(r); err != nil {
		return e, err
	}

	if e.Section, err = dio.ReadInt(r); err != nil {
		return e, err
	}

	if e.DefN, err = dio.ReadString(r); err != nil {
		return e, err
	}
	if e.DropStmt, err = dio.ReadString(r); err != nil {
		return e, err
	}
	if e.CopyStmt, err = dio.ReadString(r); err != nil {
		return e, err
	}
	if e.Namespace, err = dio.ReadString(r); err != nil {
		return e, err
	}
	if e.Tablespace, err = dio.ReadString(r); err != nil {
		return e, err
	}
	if v.atLeast(v1_14) {
		if e.TableAM, err = dio.ReadString(r); err != nil {
			return e, err
		}
	}
	if e.Owner, err = dio.ReadString(r); err != nil {
		return e, err
	}
	if e.WithOids, err = dio.ReadString(r); err != nil {
		return e, err
	}

	// Dependencies: a sequence of strings ended by an empty one.
	for {
		dep, err := dio.ReadString(r)
		if err != nil {
			return e, err
		}
		if dep == "" {
			break
		}
	}

	// data_state byte, then the block's offset.
	if _, err := dio.ReadByte(r); err != nil {
		return e, err
	}
	if _, err := dio.ReadOffset(r); err != nil {
		return e, err
	}

	return e, nil
}
