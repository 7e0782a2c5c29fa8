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
 *
 * */

//Package mm implements communication with force field engines
//(Open Babel and RDKit) in such a way that the minimization settings (Calc) are as separated
//as possible from the choice of engine to perform the minimization.
//The engines run as small Python programs, embedded in this package, which talk to
//goMin through JSON lines. Engines are picked by name from a registry. The
//noopenbabel and nordkit build tags leave the respective engine out.

package mm
