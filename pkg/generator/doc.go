// Package generator wires theme resolution, the render pipeline, format
// post-processing and file output into a single Generate call.
//
// Basic usage:
//
//	gen := generator.New(generator.WithThemesRoot("themes"))
//	res, err := gen.Generate(ctx, generator.Request{
//		ResumePath: "resume.json",
//		Theme:      "modern",
//		Format:     "html",
//		Output:     "out/resume.html",
//	})
package generator
