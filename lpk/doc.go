// Copyright 2025 go-mgard Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package lpk implements the MGARD linear processing kernels.
//
// A linear processing kernel applies the piecewise-linear mass-transfer
// stencil (MassTrans) along one axis of an N-dimensional field. The field is
// viewed through three logical tile axes: R (slowest, z), C (y) and F
// (fastest, x). The three kernels differ only in the processed axis:
//
//	Role   Kernel  Processed  Output extents (z, y, x)
//	RoleF  LPK-1   F          (nr,   nc,   nf_c)
//	RoleC  LPK-2   C          (nr,   nc_c, nf_c)
//	RoleR  LPK-3   R          (nr_c, nc_c, nf_c)
//
// Each kernel reads two inputs laid out [coarse | coefficient] along the
// processed axis (see grid.Reorder): V1 holds the coarse nodes and V2 the
// coefficient nodes between them. Chaining LPK-1, LPK-2 and LPK-3 reduces a
// 3D field to its coarse grid; Launcher.Chain does exactly that.
//
// # Tiling
//
// Every block stages a halo tile of 2*T+3 samples along the processed axis
// in shared memory, where T is the tile extent of that axis, plus the
// distance and ratio entries the tile needs. Tile shapes come from a table
// of seven configurations per dimensionality class (see Tile). Output does
// not depend on the configuration; Profile runs all of them.
//
// # Axes beyond three
//
// Axes of a D > 3 field that are not R, C or F are folded into the grid X
// dimension. Their extent is the coarse extent if the axis is in the
// processed set of the Metadata, and the full extent otherwise.
package lpk
