/*
 * journal.go, part of gomin.
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

package scene

import "fmt"

//Entry is one change to the scene.
type Entry struct {
	Seq    int
	Op     string //load, delete, select, coords, flag, fit, xfit or update.
	Target string
}

func (E Entry) String() string {
	return fmt.Sprintf("%d %s %s", E.Seq, E.Op, E.Target)
}

//record adds an entry to the journal. The caller must hold the data lock.
func (S *Scene) record(op, target string) {
	S.journal = append(S.journal, Entry{Seq: len(S.journal) + 1, Op: op, Target: target})
}

//Journal returns a copy of the changes done to the scene, in order.
func (S *Scene) Journal() []Entry {
	S.mu.RLock()
	defer S.mu.RUnlock()
	ret := make([]Entry, len(S.journal))
	copy(ret, S.journal)
	return ret
}
