// Package mosaic composes cached album covers into one square image.
//
// For N covers and a final size S the grid is G = ceil(sqrt(N)) tiles per
// side and every tile is T = S / G pixels (integer division). Cover i lands
// at column i % G and row i / G. When G*T < S the leftover strip on the
// right and bottom stays black.
//
//	comp := mosaic.NewCompositor(afero.NewOsFs(), settings)
//	res, err := comp.BuildFromCache(ctx, store, settings.OutputPath)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Mosaic built with %d albums: %s\n", res.Tiles, res.OutputPath)
package mosaic
