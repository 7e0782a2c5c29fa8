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

/*Package scene implements a small in-memory visualization host: objects with several states,
named selections, atom flags and superpositions. It is what the gomin command uses to hold
the molecules it minimizes, and what the goMin tests use instead of PyMOL.

Selection expressions are unions of terms, separated by "|" or "or", with optional parentheses. A
term is one of "all", "enabled", "none", the name of an object or of a named selection, or
object/ids, where ids is a list of 1-based atom IDs like 1+3-5.
*/
package scene
