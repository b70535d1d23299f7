package main

import (
	"fmt"

	"github.com/fwojciec/docsift"
)

// Run executes the delete command. It removes the site's mirror, its vector
// collection and its registry record.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return docsift.Errorf(docsift.EINVALID, "use --force to confirm deletion")
	}

	if _, err := docsift.ParseBaseURL(c.URL); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docsift.ErrorMessage(err))
		return err
	}
	key := docsift.CollectionKey(c.URL)

	if err := deps.Mirror.DeleteSite(deps.Ctx, key); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docsift.ErrorMessage(err))
		return err
	}

	if deps.Vectors != nil {
		exists, err := deps.Vectors.CollectionExists(deps.Ctx, key)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "warning: vector store unavailable, collection %s kept: %v\n", key, err)
		} else if exists {
			if err := deps.Vectors.DeleteCollection(deps.Ctx, key); err != nil {
				fmt.Fprintf(deps.Stderr, "error: %s\n", docsift.ErrorMessage(err))
				return err
			}
		}
	}

	if err := deps.Sites.DeleteSite(deps.Ctx, key); err != nil && docsift.ErrorCode(err) != docsift.ENOTFOUND {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docsift.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted %s (%s)\n", c.URL, key)
	return nil
}
