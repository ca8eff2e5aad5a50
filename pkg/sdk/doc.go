// Package lowcms embeds the lowcms catalog in a Go program: databases that
// point at directories of JSON files, contents inside them, JSON schemas
// derived from samples and Mongo-style record search.
//
//	client, _ := lowcms.New(ctx,
//	    lowcms.WithSQLite("lowcms.db"),
//	    lowcms.WithWorkspace("./data"),
//	)
//	defer client.Close()
//
//	db, _ := client.Databases().Create(ctx, lowcms.DatabaseInput{Name: "blog", Directory: "blog"})
//	posts, _ := client.Contents().Create(ctx, db.ID, lowcms.ContentInput{
//	    Name: "posts", Type: lowcms.ContentCollection, FilePath: "posts.json",
//	})
//	derived, _ := client.Contents().Derive(ctx, posts.ID)
//	records, _ := client.Contents().Search(ctx, posts.ID, []byte(`{"views":{"$gt":10}}`))
package lowcms
