/*
 * doc.go, part of gomin.
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
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
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

/*Package gomin is the main package of the goMin library. goMin runs force field
energy minimizations of atoms that live in a molecular visualization program
(the "host", in the library's jargon, usually PyMOL) using an external force field engine
(Open Babel or RDKit, see the mm package), and puts the minimized coordinates back into the host.

This package contains the data types shared by the other packages (Atom, Topology, FixedMask, Record),
the Host interface a visualization program needs to implement, and the error kinds used in
goMin. The minimizations themselves are in the minimize package. The scene package has an in-memory
Host which is used by the gomin command and in tests.

goMin is a pure Go library, but the force field engines are not: the mm package runs them
as external Python processes.
*/
package gomin
