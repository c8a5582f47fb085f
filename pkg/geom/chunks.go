package geom

// ChunkSize is the horizontal extent of one chunk in blocks.
const ChunkSize = 16

// ChunkCoord identifies one 16×16 horizontal grid cell.
type ChunkCoord struct {
	X, Z int
}

// ChunksFor enumerates every chunk the box intersects on the X/Z plane.
// The result is deduplicated by construction; ordering is X-major but not
// part of the contract. Negative coordinates use floor division, so a box
// straddling the origin lands in the correct negative chunks.
func ChunksFor(b BBox) []ChunkCoord {
	minX := floorDiv(b.Min[0], ChunkSize)
	maxX := ceilDiv(b.Max[0], ChunkSize)
	minZ := floorDiv(b.Min[2], ChunkSize)
	maxZ := ceilDiv(b.Max[2], ChunkSize)

	chunks := make([]ChunkCoord, 0, (maxX-minX)*(maxZ-minZ))
	for x := minX; x < maxX; x++ {
		for z := minZ; z < maxZ; z++ {
			chunks = append(chunks, ChunkCoord{X: x, Z: z})
		}
	}
	return chunks
}

// floorDiv divides rounding toward negative infinity, unlike Go's
// truncating integer division.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func ceilDiv(a, b int) int {
	return -floorDiv(-a, b)
}
