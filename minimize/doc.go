/*
 * doc.go, part of gomin.
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

//Package minimize runs force field energy minimizations on the atoms of a Host.
//
//A minimization selects the atoms, makes sure their coordinates are not all collapsed
//into one point, exports them to a force field engine (see package mm), together with the atoms
//that have the fix flag, and puts the minimized coordinates back in the Host, either
//in place or as a new object. Only the last part, the reconciliation, takes the
//host lock.
package minimize
