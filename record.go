/*
 * record.go, part of gomin.
 *
 * Copyright 2021 Raul Mera <rmeraatusachdotcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package gomin

//FormatMol is the format name for MDL V2000 molfiles.
const FormatMol = "mol"

//Record is a serialized structure (topology and coordinates) as handed to a
//force field engine. It is created by an export and used once.
type Record struct {
	Format string
	Data   string
}

//MolRecord returns a molfile Record with the given data.
func MolRecord(data string) Record {
	return Record{Format: FormatMol, Data: data}
}

//Empty returns true if the record has no data.
func (R Record) Empty() bool {
	return R.Data == ""
}
