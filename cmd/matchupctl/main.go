// Command matchupctl builds matchup tables, trains classifiers and answers
// predictions from local files.
package main

func main() {
	Execute()
}
