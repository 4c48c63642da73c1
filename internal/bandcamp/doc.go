// Package bandcamp provides functionality to query Bandcamp's search page
// and extract album cover references from it.
//
// # Cover Lookup
//
// Use the Searcher to find the cover image URL for an album:
//
//	searcher := bandcamp.NewSearcher(client, bandcamp.DefaultSearchURL)
//	imageURL, err := searcher.FindCoverURL(ctx, "Sun Ra", "Jazz in Silhouette")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Search Page Format
//
// Bandcamp renders search results as list items:
//
//	<li class="searchresult data-search">
//	  <a class="artcont"><div class="art"><img src="https://f4.bcbits.com/img/a123_7.jpg"></div></a>
//	  <div class="result-info">
//	    <div class="itemtype">ALBUM</div>
//	    <div class="heading"><a href="...">Jazz in Silhouette</a></div>
//	    <div class="subhead">by Sun Ra</div>
//	  </div>
//	</li>
//
// FirstImageURL returns the first image inside such an entry. ParseSearchResults
// returns all entries; Searcher logs the one it took at debug level.
package bandcamp
